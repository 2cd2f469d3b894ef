package rig

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange     = errors.New("pixel index out of range")
	ErrLengthMismatch = errors.New("pixel slice length mismatch")
)

// Buffer is a fixed-length run of pixels. The length never changes after NewBuffer.
type Buffer struct {
	px []Pixel
}

func NewBuffer(n int) *Buffer { return &Buffer{px: make([]Pixel, n)} }

func (b *Buffer) Len() int { return len(b.px) }

// Set writes p at i. Out-of-range indices leave the buffer untouched.
func (b *Buffer) Set(i int, p Pixel) error {
	if i < 0 || i >= len(b.px) {
		return fmt.Errorf("set %d of %d: %w", i, len(b.px), ErrOutOfRange)
	}
	b.px[i] = p
	return nil
}

func (b *Buffer) Get(i int) (Pixel, error) {
	if i < 0 || i >= len(b.px) {
		return Black, fmt.Errorf("get %d of %d: %w", i, len(b.px), ErrOutOfRange)
	}
	return b.px[i], nil
}

// At is Get without the error; out of range reads as black.
func (b *Buffer) At(i int) Pixel {
	if i < 0 || i >= len(b.px) {
		return Black
	}
	return b.px[i]
}

func (b *Buffer) Clear() { b.Fill(Black) }

func (b *Buffer) Fill(p Pixel) {
	for i := range b.px {
		b.px[i] = p
	}
}

// Replace overwrites every pixel at once.
func (b *Buffer) Replace(src []Pixel) error {
	if len(src) != len(b.px) {
		return fmt.Errorf("replace %d with %d: %w", len(b.px), len(src), ErrLengthMismatch)
	}
	copy(b.px, src)
	return nil
}

// Pixels returns a copy of the buffer contents.
func (b *Buffer) Pixels() []Pixel {
	out := make([]Pixel, len(b.px))
	copy(out, b.px)
	return out
}

func (b *Buffer) copyFrom(o *Buffer) { copy(b.px, o.px) }
