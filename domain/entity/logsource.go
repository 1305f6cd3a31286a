package entity

import "strings"

// SourceUnknown is the sentinel source identifier used whenever an index name
// cannot be mapped back to one of the registered log sources.
const SourceUnknown = "unknown"

// LogSource describes one of the seven security log origins the dashboard
// covers. Instances are immutable and defined at process start.
type LogSource struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Color        string `json:"color"`
	IndexPattern string `json:"index_pattern"`
}

// Registry holds the fixed, ordered set of log sources. Order matters: index
// unions and index-to-source mapping both follow registry order.
type Registry struct {
	sources []LogSource
}

// NewRegistry returns the registry of the seven log sources covered by the
// SOC dashboard.
func NewRegistry() *Registry {
	return &Registry{
		sources: []LogSource{
			{
				ID:           "palo_alto",
				Name:         "Palo Alto Firewall",
				Description:  "Perimeter north-south traffic protection",
				Category:     "perimeter",
				Color:        "#FF6B35",
				IndexPattern: "paloalto-*",
			},
			{
				ID:           "fortigate",
				Name:         "FortiGate Firewall",
				Description:  "Internal east-west traffic segmentation",
				Category:     "internal_segmentation",
				Color:        "#004E89",
				IndexPattern: "fortigate-*",
			},
			{
				ID:           "spam_filter",
				Name:         "SPAM Filter",
				Description:  "First-stage email filtering",
				Category:     "email_security",
				Color:        "#F77F00",
				IndexPattern: "spam-filter-*",
			},
			{
				ID:           "trend_email",
				Name:         "Trend Micro Email Security",
				Description:  "Second-stage email filtering (advanced threats / APT)",
				Category:     "email_security",
				Color:        "#FCBF49",
				IndexPattern: "trend-email-*",
			},
			{
				ID:           "trend_apex",
				Name:         "Trend Apex Central",
				Description:  "Endpoint protection (EDR / antivirus)",
				Category:     "endpoint_protection",
				Color:        "#003049",
				IndexPattern: "trend-apex-*",
			},
			{
				ID:           "windows_events",
				Name:         "Windows Event Logs",
				Description:  "Identity (AD), GPO and system logon auditing",
				Category:     "identity_access",
				Color:        "#669BBC",
				IndexPattern: "winlogbeat-*",
			},
			{
				ID:           "manage_engine",
				Name:         "ManageEngine",
				Description:  "IT asset management and operations auditing",
				Category:     "asset_management",
				Color:        "#C1121F",
				IndexPattern: "manageengine-*",
			},
		},
	}
}

// Sources returns the registered log sources in registry order.
func (r *Registry) Sources() []LogSource {
	out := make([]LogSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// Lookup returns the log source with the given identifier.
func (r *Registry) Lookup(id string) (LogSource, bool) {
	for _, s := range r.sources {
		if s.ID == id {
			return s, true
		}
	}
	return LogSource{}, false
}

// ResolveIndices resolves the index set a query should target. A registered
// source id yields that source's pattern; anything else (including the empty
// string) yields the comma-joined union of all patterns in registry order.
// Unknown ids deliberately fall through to the union: Elasticsearch ignores
// unmatched index globs, so the permissive policy is safe.
func (r *Registry) ResolveIndices(sourceID string) string {
	if src, ok := r.Lookup(sourceID); ok {
		return src.IndexPattern
	}

	patterns := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		patterns = append(patterns, s.IndexPattern)
	}
	return strings.Join(patterns, ",")
}

// MapIndexToSource maps a concrete index name back to a source identifier.
// Each pattern is tested as a wildcard-stripped substring; the first match in
// registry order wins. Unmappable names resolve to SourceUnknown.
func (r *Registry) MapIndexToSource(indexName string) string {
	for _, s := range r.sources {
		stem := strings.ReplaceAll(s.IndexPattern, "*", "")
		if stem != "" && strings.Contains(indexName, stem) {
			return s.ID
		}
	}
	return SourceUnknown
}
