package graph

import (
	"fmt"
	"strings"
)

// Canonical input and output keys used by node execution logic. Handles on
// the wire map onto these via the tables below.
const (
	KeyText            = "text"
	KeyTexts           = "texts"
	KeyImageAsset      = "image_asset"
	KeyImages          = "images"
	KeyImageList       = "image_list"
	KeyVideoAsset      = "video_asset"
	KeyPrompt          = "prompt"
	KeyReferenceImages = "reference_images"
	KeyReferenceImage  = "reference_image"
	KeyStylePrompt     = "style_prompt"
	KeySetupPrompt     = "setup_prompt"
	KeyMovementPrompt  = "movement_prompt"
	KeyInput           = "input"
)

// BranchPrefix is the output key prefix for router branches (branch_A,
// branch_B, ...).
const BranchPrefix = "branch_"

// MaxRouterBranches bounds router fan-out to single-letter branch labels.
const MaxRouterBranches = 26

type handleKey struct {
	nodeType NodeType
	handle   string
}

// outputHandles maps (source node type, source handle) to the output key the
// value lives under in that node's outputs. The empty handle is the node's
// default output.
var outputHandles = map[handleKey]string{
	{NodePrompt, ""}:       KeyText,
	{NodePrompt, "output"}: KeyText,
	{NodePrompt, "text"}:   KeyText,

	{NodeCombineText, ""}:       KeyText,
	{NodeCombineText, "output"}: KeyText,
	{NodeCombineText, "text"}:   KeyText,

	{NodeReferenceImage, ""}:       KeyImageAsset,
	{NodeReferenceImage, "output"}: KeyImageAsset,
	{NodeReferenceImage, "image"}:  KeyImageAsset,

	{NodeCombineImage, ""}:       KeyImageList,
	{NodeCombineImage, "output"}: KeyImageList,
	{NodeCombineImage, "images"}: KeyImageList,

	{NodeImageGen, ""}:       KeyImageAsset,
	{NodeImageGen, "output"}: KeyImageAsset,
	{NodeImageGen, "image"}:  KeyImageAsset,

	{NodeVideoGen, ""}:       KeyVideoAsset,
	{NodeVideoGen, "output"}: KeyVideoAsset,
	{NodeVideoGen, "video"}:  KeyVideoAsset,

	{NodeDirectorStyle, ""}:       KeyStylePrompt,
	{NodeDirectorStyle, "output"}: KeyStylePrompt,
	{NodeDirectorStyle, "style"}:  KeyStylePrompt,

	{NodeCinematicSetup, ""}:       KeySetupPrompt,
	{NodeCinematicSetup, "output"}: KeySetupPrompt,
	{NodeCinematicSetup, "setup"}:  KeySetupPrompt,

	{NodeCameraMovement, ""}:         KeyMovementPrompt,
	{NodeCameraMovement, "output"}:   KeyMovementPrompt,
	{NodeCameraMovement, "movement"}: KeyMovementPrompt,
}

// inputHandles maps (target node type, target handle) to the input key the
// value accumulates under. Handles absent from this table fall back to the
// raw handle id; see ResolveInputKey.
var inputHandles = map[handleKey]string{
	{NodeCombineText, ""}:           KeyTexts,
	{NodeCombineText, "input"}:      KeyTexts,
	{NodeCombineText, "text"}:       KeyTexts,
	{NodeCombineText, "text_input"}: KeyTexts,

	{NodeCombineImage, ""}:            KeyImages,
	{NodeCombineImage, "input"}:       KeyImages,
	{NodeCombineImage, "image"}:       KeyImages,
	{NodeCombineImage, "image_input"}: KeyImages,

	{NodeImageGen, ""}:                 KeyPrompt,
	{NodeImageGen, "prompt"}:           KeyPrompt,
	{NodeImageGen, "text"}:             KeyPrompt,
	{NodeImageGen, "reference"}:        KeyReferenceImages,
	{NodeImageGen, "reference_images"}: KeyReferenceImages,
	{NodeImageGen, "images"}:           KeyReferenceImages,
	{NodeImageGen, "style"}:            KeyStylePrompt,

	{NodeVideoGen, ""}:          KeyReferenceImage,
	{NodeVideoGen, "image"}:     KeyReferenceImage,
	{NodeVideoGen, "keyframe"}:  KeyReferenceImage,
	{NodeVideoGen, "reference"}: KeyReferenceImage,
	{NodeVideoGen, "prompt"}:    KeyPrompt,
	{NodeVideoGen, "movement"}:  KeyPrompt,
	{NodeVideoGen, "camera"}:    KeyPrompt,

	{NodeRouter, ""}:      KeyInput,
	{NodeRouter, "input"}: KeyInput,
}

// ResolveOutputKey maps a source handle on a node of the given type to the
// output key carrying its value. Resolution is strict: an unknown handle is a
// malformed graph, not a missing value.
func ResolveOutputKey(t NodeType, handle string) (string, error) {
	if t == NodeRouter {
		// Router outputs are its dynamic branch labels; the edge must name one.
		if strings.HasPrefix(handle, BranchPrefix) && len(handle) == len(BranchPrefix)+1 {
			return handle, nil
		}
		return "", fmt.Errorf("invalid output handle %q for node type %s", handle, t)
	}
	key, ok := outputHandles[handleKey{t, handle}]
	if !ok {
		return "", fmt.Errorf("invalid output handle %q for node type %s", handle, t)
	}
	return key, nil
}

// ResolveInputKey maps a target handle on a node of the given type to the
// input key the value accumulates under. Unmapped handles fall back to the
// raw handle id so ad-hoc handles still deliver their value; an empty
// unmapped handle falls back to "input".
func ResolveInputKey(t NodeType, handle string) string {
	if key, ok := inputHandles[handleKey{t, handle}]; ok {
		return key
	}
	if handle == "" {
		return KeyInput
	}
	return handle
}

// BranchKey returns the output key for the n-th router branch (0-based):
// branch_A, branch_B, ...
func BranchKey(n int) string {
	return BranchPrefix + string(rune('A'+n))
}
