package animgraph

import "fmt"

// Load-time error sentinels. Only loading can fail (spec §7); once a Graph is
// loaded successfully, evaluation never returns an error — failures degrade
// to a logged warning and a defined fallback value.
var (
	errNoRootNode       = fmt.Errorf("animgraph: graph has no root output node")
	errUnsupportedBlob  = fmt.Errorf("animgraph: unsupported graph blob version")
	errTruncatedBlob    = fmt.Errorf("animgraph: truncated graph blob")
	errUnknownNodeGroup = fmt.Errorf("animgraph: unknown node group/type pair")
)

// loadError wraps an underlying cause with the node or sub-graph context in
// which it occurred, matching the teacher's fmt.Errorf("...: %w", err)
// wrapping style (atlas.go).
func loadError(context string, cause error) error {
	return fmt.Errorf("animgraph: %s: %w", context, cause)
}
