package render

// Builtins returns a registry holding every mode this package ships.
func Builtins() *Registry {
	r := NewRegistry()
	for name, f := range map[string]Factory{
		"off":     newBarsOff,
		"steady":  newSteady,
		"blink":   newBlink,
		"rainbow": newRainbow,
		"draw":    newDraw,
		"square":  newSquare,
		"bounce":  newBounce,
		"recolor": newRecolor,
		"grid":    newGrid,
		"wheel":   newWheel,
		"sun":     newSun,
		"train":   newTrain,
		"glow":    newGlow,
		"noot":    newNoot,
		"sweep":   newSweep,
	} {
		r.Register(Bars, name, f)
	}
	r.Register(Dragons, "off", newDragonsOff)
	r.Register(Dragons, "eyes", newEyes)
	r.Register(Dragons, "fire", newFire)
	return r
}
