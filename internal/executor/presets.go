package executor

import "fmt"

// Canned text blocks for the config-injector node types. These nodes take no
// inputs; they emit a templated prompt fragment keyed by their configuration.

var directorStyles = map[string]string{
	"wes-anderson": "Symmetrical composition, pastel color palette, flat frontal framing, meticulous production design in the style of Wes Anderson.",
	"nolan":        "High-contrast practical lighting, IMAX-scale vistas, grounded realism with a cool color temperature in the style of Christopher Nolan.",
	"fincher":      "Desaturated greens and yellows, precise locked-off camera, low-key lighting with deep shadows in the style of David Fincher.",
	"kubrick":      "One-point perspective, slow deliberate framing, stark wide-angle interiors in the style of Stanley Kubrick.",
	"scorsese":     "Kinetic energy, warm saturated tones, long flowing takes through crowded spaces in the style of Martin Scorsese.",
	"villeneuve":   "Monumental scale, heavy atmosphere, muted monochromatic palette with diffused light in the style of Denis Villeneuve.",
}

var cinematicSetups = map[string]string{
	"golden-hour": "Shot during golden hour, warm low-angle sunlight, long soft shadows, gentle lens flare.",
	"studio":      "Clean studio environment, seamless backdrop, controlled three-point lighting, no ambient spill.",
	"neon-night":  "Night exterior lit by neon signage, wet reflective streets, cyan and magenta color contrast.",
	"overcast":    "Overcast daylight, large soft source, muted contrast, naturalistic color.",
	"candlelit":   "Candlelit interior, flickering warm key light, deep falloff into darkness, intimate framing.",
}

var cameraMovements = map[string]string{
	"static":    "Static camera, locked-off tripod shot, no movement.",
	"dolly-in":  "Slow dolly in toward the subject, steady and deliberate.",
	"dolly-out": "Slow dolly out revealing the wider scene.",
	"pan-left":  "Smooth pan from right to left across the scene.",
	"pan-right": "Smooth pan from left to right across the scene.",
	"crane-up":  "Crane up from eye level to a high overhead angle.",
	"orbit":     "Orbit around the subject in a continuous circular track.",
	"handheld":  "Handheld camera with subtle organic shake, documentary feel.",
}

func directorStyleText(style string) (string, error) {
	if text, ok := directorStyles[style]; ok {
		return text, nil
	}
	return "", fmt.Errorf("unknown director style %q", style)
}

func cinematicSetupText(setup string) (string, error) {
	if text, ok := cinematicSetups[setup]; ok {
		return text, nil
	}
	return "", fmt.Errorf("unknown cinematic setup %q", setup)
}

func cameraMovementText(movement string) (string, error) {
	if text, ok := cameraMovements[movement]; ok {
		return text, nil
	}
	return "", fmt.Errorf("unknown camera movement %q", movement)
}
