package statsd

import (
	"maps"
	"slices"
	"strings"
)

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_")

// metricName joins prefix and name into a dotted metric path. It returns "" for an empty name.
func metricName(prefix, name string) string {
	n := nameReplacer.Replace(strings.TrimSpace(name))
	parts := make([]string, 0, 8)
	for p := range strings.SplitSeq(prefix+"."+n, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if strings.Trim(n, "._") == "" {
		return ""
	}
	return strings.Join(parts, ".")
}

// cleanTags copies tags with keys and values trimmed, dropping empty keys.
func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

// encodeLine renders name:value|kind|#k:v,... with local tags overriding global ones.
func encodeLine(prefix, name, value, kind string, global, local map[string]string) string {
	metric := metricName(prefix, name)
	if metric == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(metric)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)

	merged := cleanTags(global)
	maps.Copy(merged, cleanTags(local))
	for i, k := range slices.Sorted(maps.Keys(merged)) {
		if i == 0 {
			b.WriteString("|#")
		} else {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(merged[k])
	}
	return b.String()
}
