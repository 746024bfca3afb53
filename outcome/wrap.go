package outcome

// Wrap produces a best-effort node from an arbitrary foreign value:
//
//   - an existing *Node passes through unchanged (no re-classification),
//   - an error becomes an ERROR node,
//   - a string, byte slice, or map carrying a recognizable structured
//     error in the external tool's vocabulary becomes a FAILURE node
//     (or SUCCESS when the payload reports a zero status),
//   - anything else becomes a WARNING node recording the raw value.
//
// name is used for newly created nodes only.
func Wrap(name string, v interface{}) *Node {
	switch val := v.(type) {
	case *Node:
		return val
	case error:
		n := New(name, KindUtility, Options{StartNow: true})
		_ = n.Error(val)
		return n
	case string:
		return wrapText(name, val)
	case []byte:
		return wrapText(name, string(val))
	case map[string]interface{}:
		return wrapPayload(name, Detail(val))
	case Detail:
		return wrapPayload(name, val)
	default:
		n := New(name, KindUtility, Options{StartNow: true})
		_ = n.Warning(Detail{"value": v})
		return n
	}
}

func wrapText(name, text string) *Node {
	if payload, ok := LastJSONObject(text); ok {
		n := wrapPayload(name, payload)
		_ = n.AuditChild(rawTextNode(text))
		return n
	}
	n := New(name, KindUtility, Options{StartNow: true})
	_ = n.Warning(Detail{"raw": text})
	return n
}

func wrapPayload(name string, payload Detail) *Node {
	n := New(name, KindUtility, Options{StartNow: true})
	status, ok := ToolStatus(payload)
	switch {
	case ok && status != 0:
		_ = n.Failure(payload)
	case ok:
		_ = n.Success(payload)
	default:
		_ = n.Warning(payload)
	}
	return n
}

func rawTextNode(text string) *Node {
	raw := New("raw-output", KindUtility, Options{StartNow: true})
	_ = raw.Success(Detail{"raw": text})
	return raw
}
