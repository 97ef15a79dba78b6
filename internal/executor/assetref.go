package executor

// AssetRef is the asset descriptor carried through node outputs and run
// payloads. It round-trips through JSON as a plain map so cached outputs
// reloaded from prior runs look identical to freshly computed ones.
type AssetRef struct {
	ID         string
	Type       string
	Status     string
	URL        string
	StorageKey string
	Label      string
}

// Map renders the descriptor as the map shape stored in outputs. An empty URL
// is emitted as an explicit null so in-flight assets are distinguishable from
// assets whose URL was dropped.
func (r AssetRef) Map() map[string]any {
	m := map[string]any{
		"id":     r.ID,
		"type":   r.Type,
		"status": r.Status,
	}
	if r.URL != "" {
		m["url"] = r.URL
	} else {
		m["url"] = nil
	}
	if r.StorageKey != "" {
		m["storage_key"] = r.StorageKey
	}
	if r.Label != "" {
		m["label"] = r.Label
	}
	return m
}

// AssetRefFrom recovers a descriptor from an output value. It accepts the map
// shape produced by Map, including maps decoded from persisted JSON.
func AssetRefFrom(value any) (AssetRef, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return AssetRef{}, false
	}
	ref := AssetRef{
		ID:         stringField(m, "id"),
		Type:       stringField(m, "type"),
		Status:     stringField(m, "status"),
		URL:        stringField(m, "url"),
		StorageKey: stringField(m, "storage_key"),
		Label:      stringField(m, "label"),
	}
	if ref.ID == "" && ref.URL == "" {
		return AssetRef{}, false
	}
	return ref, true
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
