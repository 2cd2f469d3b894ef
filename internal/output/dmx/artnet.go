package dmx

import (
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ArtNetPort is the UDP port Art-Net nodes listen on.
const ArtNetPort = 6454

// ArtNet sends ArtDMX packets for one universe to a node or broadcast address.
type ArtNet struct {
	conn     *net.UDPConn
	dst      *net.UDPAddr
	universe uint16
	seq      uint8
}

// DialArtNet resolves target ("host" or "host:port") and opens a sending socket.
func DialArtNet(target string, universe int) (*ArtNet, error) {
	if _, _, err := net.SplitHostPort(target); err != nil {
		target = net.JoinHostPort(target, strconv.Itoa(ArtNetPort))
	}
	dst, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("artnet target %q: %w", target, err)
	}
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}
	if err := enableBroadcast(conn); err != nil {
		log.Warn().Err(err).Msg("unable to set SO_BROADCAST; broadcast targets may fail")
	}
	log.Info().Str("target", dst.String()).Int("universe", universe).Msg("art-net output")
	return &ArtNet{conn: conn, dst: dst, universe: uint16(universe), seq: 1}, nil
}

func (a *ArtNet) Name() string { return "artnet" }

func (a *ArtNet) Send(u *Universe) error {
	pkt := buildArtDMX(a.seq, a.universe, u[:])
	a.seq++
	if a.seq == 0 {
		a.seq = 1 // 0 disables sequencing on the node
	}
	if _, err := a.conn.WriteToUDP(pkt, a.dst); err != nil {
		return fmt.Errorf("artnet send to %s: %w", a.dst, err)
	}
	return nil
}

func (a *ArtNet) Close() error { return a.conn.Close() }

// buildArtDMX lays out an OpOutput packet: ID, opcode (LE), protocol 14, sequence,
// physical, SubUni, Net, length (BE), data.
func buildArtDMX(seq uint8, universe uint16, data []byte) []byte {
	pkt := make([]byte, 18+len(data))
	copy(pkt[0:], "Art-Net\x00")
	pkt[8], pkt[9] = 0x00, 0x50
	pkt[10], pkt[11] = 0x00, 14
	pkt[12], pkt[13] = seq, 0x00
	pkt[14], pkt[15] = byte(universe&0xFF), byte((universe>>8)&0x7F)
	n := len(data)
	pkt[16], pkt[17] = byte((n>>8)&0xFF), byte(n&0xFF)
	copy(pkt[18:], data)
	return pkt
}
