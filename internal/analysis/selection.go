package analysis

// DefaultSelectionSize is how many leading numeric columns are selected by default.
const DefaultSelectionSize = 3

// DefaultSelection returns the first n numeric columns.
func DefaultSelection(t *Table, n int) []string {
	if n <= 0 {
		n = DefaultSelectionSize
	}
	nums := NumericColumns(t)
	if len(nums) > n {
		nums = nums[:n]
	}
	return nums
}

// ResolveSelection validates a user selection against the table's numeric columns.
// Unknown, non-numeric and repeated names are dropped; order is preserved. A nil
// request yields the default selection; a non-nil request that resolves to nothing
// yields an empty selection.
func ResolveSelection(t *Table, requested []string, defaultSize int) []string {
	if requested == nil {
		return DefaultSelection(t, defaultSize)
	}
	out := []string{}
	seen := map[string]bool{}
	for _, name := range requested {
		c, ok := t.Column(name)
		if !ok || !c.Kind.IsNumeric() || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ResolveCategory returns the requested column when it is categorical in t, otherwise
// the first categorical column, or "" when the table has none.
func ResolveCategory(t *Table, requested string) string {
	if c, ok := t.Column(requested); ok && c.Kind == KindText {
		return requested
	}
	cats := CategoricalColumns(t)
	if len(cats) == 0 {
		return ""
	}
	return cats[0]
}
