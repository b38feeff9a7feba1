package commonconfig

// Merge deep-merges overlay into base in place. Overlay wins on conflicts;
// nested objects merge recursively, arrays and scalars are replaced.
func Merge(base, overlay Tree) {
	for _, key := range overlay.Keys() {
		value, _ := overlay.Get(key)
		if baseChild, ok := base.Child(key); ok {
			if overlayChild, ok := overlay.Child(key); ok {
				Merge(baseChild, overlayChild)
				continue
			}
		}
		base.Set(key, cloneValue(value))
	}
}

// Strip removes from target, in place, every value equal to the one at the
// same key in common. Nested objects are stripped recursively and dropped
// once they become empty.
func Strip(target, common Tree) {
	for _, key := range common.Keys() {
		targetValue, ok := target.Get(key)
		if !ok {
			continue
		}
		commonValue, _ := common.Get(key)

		if targetChild, ok := target.Child(key); ok {
			if commonChild, ok := common.Child(key); ok {
				Strip(targetChild, commonChild)
				if targetChild.Len() == 0 {
					target.Delete(key)
				}
				continue
			}
		}
		if target.Equal(targetValue, commonValue) {
			target.Delete(key)
		}
	}
}

// MergeJSON returns common overlaid with specific; neither input is modified
func MergeJSON(common, specific map[string]any) map[string]any {
	merged := cloneObject(common)
	Merge(JSONTree(merged), JSONTree(specific))
	return merged
}

// StripJSON returns a copy of target without the values it shares with common
func StripJSON(target, common map[string]any) map[string]any {
	out := cloneObject(target)
	Strip(JSONTree(out), JSONTree(common))
	return out
}

// MergeTOML returns common overlaid with specific; neither input is modified
func MergeTOML(common, specific map[string]any) map[string]any {
	merged := cloneObject(common)
	Merge(TOMLTree(merged), TOMLTree(specific))
	return merged
}

// StripTOML returns a copy of target without the values it shares with common
func StripTOML(target, common map[string]any) map[string]any {
	out := cloneObject(target)
	Strip(TOMLTree(out), TOMLTree(common))
	return out
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return cloneValue(m).(map[string]any)
}
