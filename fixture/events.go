package fixture

import (
	"encoding/json"
	"fmt"
)

// Listener is a callback function that receives events during bundle
// generation.
type Listener func(fmt.Stringer)

func jsonString(v interface{}) string {
	b, _ := json.Marshal(map[string]interface{}{
		fmt.Sprintf("%T", v): v,
	})
	return string(b)
}

// EventDocGenerated is emitted when a fixture document is generated.
type EventDocGenerated struct {
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

func (e EventDocGenerated) String() string { return jsonString(e) }

// EventManifestComputed is emitted when the bundle manifest is computed.
type EventManifestComputed struct {
	Docs   int  `json:"docs"`
	Signed bool `json:"signed,omitempty"`
}

func (e EventManifestComputed) String() string { return jsonString(e) }

// EventBundleSaved is emitted when the bundle is written out.
type EventBundleSaved struct {
	Path string `json:"path,omitempty"`
}

func (e EventBundleSaved) String() string { return jsonString(e) }
