package columns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"treeworks/jobrecon/internal/models"
)

// defaultAliases carries the known header spellings per source. Resolution
// runs in header order: the first header matching any alias wins.
var defaultAliases = map[models.Source]map[models.LogicalField][]string{
	models.SourcePrimary: {
		models.FieldJobKey:     {"REPORT TM NO.", "REPORT TM NO", "TM NO.", "TM NO"},
		models.FieldContractor: {"REPORT TP/DC NAME (IF APPLICABLE)", "TP/DC NAME", "TP NAME"},
		models.FieldDate:       {"FF INSPECTION DATE", "INSPECTION DATE"},
		models.FieldPOType:     {"PO TYPE"},
		models.FieldStatus:     {"STATUS", "JOB STATUS"},
		models.FieldClient:     {"CLIENT NAME", "CLIENT"},
	},
	models.SourceSecondary: {
		models.FieldJobKey:     {"JobNo", "Job No", "Job Number"},
		models.FieldContractor: {"treeprofessional", "tree professional", "TP Name"},
		models.FieldCost:       {"TPCost", "TP Cost"},
	},
	models.SourceTertiary: {
		models.FieldJobKey:     {"InvoiceNumber", "Invoice Number", "Invoice No"},
		models.FieldContractor: {"ContactName", "Contact Name", "Contact"},
		models.FieldCost:       {"Total", "Invoice Total", "Amount"},
	},
}

// requiredFields lists the logical fields each source must resolve before a
// mode that consumes it may run. The primary table's filter fields are
// required because filter enumeration and pre-filtering read them.
var requiredFields = map[models.Source][]models.LogicalField{
	models.SourcePrimary: {
		models.FieldJobKey,
		models.FieldContractor,
		models.FieldDate,
		models.FieldPOType,
		models.FieldStatus,
		models.FieldClient,
	},
	models.SourceSecondary: {
		models.FieldJobKey,
		models.FieldContractor,
		models.FieldCost,
	},
	models.SourceTertiary: {
		models.FieldJobKey,
		models.FieldContractor,
		models.FieldCost,
	},
}

// DefaultAliases returns the alias lists for a source. The returned map is
// shared; callers must not mutate it.
func DefaultAliases(src models.Source) map[models.LogicalField][]string {
	return defaultAliases[src]
}

// Required returns the logical fields a source must resolve.
func Required(src models.Source) []models.LogicalField {
	return requiredFields[src]
}

// aliasFile is the YAML shape of an alias override file: source name to
// logical field to alias list.
type aliasFile map[string]map[string][]string

// LoadAliasFile reads alias overrides from a YAML file. Overrides replace
// the default list for the fields they name; unnamed fields keep their
// defaults.
func LoadAliasFile(path string) (map[models.Source]map[models.LogicalField][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}

	var raw aliasFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}

	merged := make(map[models.Source]map[models.LogicalField][]string, len(defaultAliases))
	for src, fields := range defaultAliases {
		out := make(map[models.LogicalField][]string, len(fields))
		for f, list := range fields {
			out[f] = list
		}
		if overrides, ok := raw[string(src)]; ok {
			for f, list := range overrides {
				if len(list) > 0 {
					out[models.LogicalField(f)] = list
				}
			}
		}
		merged[src] = out
	}
	return merged, nil
}
