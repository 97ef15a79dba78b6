package graph

import (
	"fmt"
	"strings"
)

// MaxCombineImages is the most images a combine-image node accepts.
const MaxCombineImages = 14

// ValidateInputs checks a node type's input contract before execution. A
// violation must be surfaced as an error-state result by the caller, never as
// a panic or a side effect.
func ValidateInputs(t NodeType, inputs map[string]any) error {
	switch t {
	case NodeCombineText:
		if emptyInput(inputs[KeyTexts]) {
			return fmt.Errorf("combine text requires at least one text input")
		}
	case NodeCombineImage:
		if emptyInput(inputs[KeyImages]) {
			return fmt.Errorf("combine image requires at least one image input")
		}
	case NodeImageGen:
		if emptyInput(inputs[KeyPrompt]) {
			return fmt.Errorf("image generation requires a prompt input")
		}
	case NodeVideoGen:
		if emptyInput(inputs[KeyReferenceImage]) {
			return fmt.Errorf("video generation requires a reference image input")
		}
	case NodeRouter:
		if _, ok := inputs[KeyInput]; !ok {
			return fmt.Errorf("router requires an input")
		}
	case NodePrompt, NodeReferenceImage, NodeDirectorStyle, NodeCinematicSetup, NodeCameraMovement:
		// Config-injector and source nodes take no inputs.
	}
	return nil
}

func emptyInput(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
