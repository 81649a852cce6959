// Package form holds the submission-form logic: which options each dropdown
// offers given the current selection, which fields are invalidated when an
// upstream field changes, and the final required-field validation that turns a
// selection into an incident record.
package form

import "sort"

// ActivityIncident is the one activity type that requires the incident detail
// fields (environment, incident type, equipment). The value is compared
// exactly; reference data stores it verbatim.
const ActivityIncident = "Incidencia"

// OptionTree is the reference data behind the form, loaded from the settings
// store. Absent map keys behave as empty lists everywhere.
type OptionTree struct {
	Sites                   []string            `json:"sedes"`
	PavilionsBySite         map[string][]string `json:"pabellones"`
	ActivityTypes           []string            `json:"tipos_actividad"`
	EnvironmentsByPavilion  map[string][]string `json:"ambientes"`
	IncidentTypes           []string            `json:"tipos_incidencia"`
	EquipmentByIncidentType map[string][]string `json:"equipos"`
	ApproxDurations         []string            `json:"tiempos_aproximados"`
}

// Field names a form field. The constants double as the wire names used by
// the API and the database columns.
type Field string

const (
	FieldReporter       Field = "usuario"
	FieldSite           Field = "sede"
	FieldPavilion       Field = "pabellon"
	FieldActivityType   Field = "tipo_actividad"
	FieldEnvironment    Field = "ambiente_incidencia"
	FieldIncidentType   Field = "tipo_incidencia"
	FieldEquipment      Field = "equipo_afectado"
	FieldApproxDuration Field = "tiempo_aproximado"
)

// Selection is one in-progress submission. Empty string means "not selected".
type Selection struct {
	Reporter       string `json:"usuario"`
	Site           string `json:"sede"`
	Pavilion       string `json:"pabellon"`
	ActivityType   string `json:"tipo_actividad"`
	Environment    string `json:"ambiente_incidencia"`
	IncidentType   string `json:"tipo_incidencia"`
	Equipment      string `json:"equipo_afectado"`
	ApproxDuration string `json:"tiempo_aproximado"`
}

// OptionsFor returns the values currently selectable for field. Fields whose
// upstream selection is missing get an empty list, not an error.
func OptionsFor(field Field, sel Selection, tree OptionTree) []string {
	switch field {
	case FieldSite:
		return tree.Sites
	case FieldActivityType:
		return tree.ActivityTypes
	case FieldIncidentType:
		return tree.IncidentTypes
	case FieldApproxDuration:
		return tree.ApproxDurations
	case FieldPavilion:
		if sel.Site == "" {
			return nil
		}
		return tree.PavilionsBySite[sel.Site]
	case FieldEquipment:
		if sel.IncidentType == "" {
			return nil
		}
		return tree.EquipmentByIncidentType[sel.IncidentType]
	case FieldEnvironment:
		return environmentOptions(sel, tree)
	}
	return nil
}

func environmentOptions(sel Selection, tree OptionTree) []string {
	if sel.Pavilion != "" {
		if envs := tree.EnvironmentsByPavilion[sel.Pavilion]; len(envs) > 0 {
			return envs
		}
		// Pavilion has no environment list of its own: offer everything.
		return allEnvironments(tree)
	}
	if sel.Site != "" && !RequiresPavilion(sel, tree) {
		return allEnvironments(tree)
	}
	return nil
}

// allEnvironments is the deduplicated union of every environment list, in
// pavilion order as stored in the tree, first occurrence wins.
func allEnvironments(tree OptionTree) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, pavilion := range environmentKeysInOrder(tree) {
		for _, env := range tree.EnvironmentsByPavilion[pavilion] {
			if _, ok := seen[env]; ok {
				continue
			}
			seen[env] = struct{}{}
			out = append(out, env)
		}
	}
	return out
}

// environmentKeysInOrder walks pavilions in the order sites declare them so
// the union is stable, then appends mapping keys that no site references.
func environmentKeysInOrder(tree OptionTree) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, site := range tree.Sites {
		for _, pavilion := range tree.PavilionsBySite[site] {
			if _, ok := seen[pavilion]; ok {
				continue
			}
			if _, ok := tree.EnvironmentsByPavilion[pavilion]; !ok {
				continue
			}
			seen[pavilion] = struct{}{}
			keys = append(keys, pavilion)
		}
	}
	var rest []string
	for pavilion := range tree.EnvironmentsByPavilion {
		if _, ok := seen[pavilion]; !ok {
			rest = append(rest, pavilion)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// ApplyChange sets field to value and clears the dependents of field in one
// pass. The clear rules are declared here once; handlers never re-derive them.
//
//	sede            -> pabellon, ambiente_incidencia
//	pabellon        -> ambiente_incidencia
//	tipo_actividad  -> ambiente_incidencia, tipo_incidencia, equipo_afectado
//	                   (only when the new value is not "Incidencia")
//	tipo_incidencia -> equipo_afectado
func ApplyChange(field Field, value string, sel Selection) Selection {
	switch field {
	case FieldReporter:
		sel.Reporter = value
	case FieldSite:
		sel.Site = value
		sel.Pavilion = ""
		sel.Environment = ""
	case FieldPavilion:
		sel.Pavilion = value
		sel.Environment = ""
	case FieldActivityType:
		sel.ActivityType = value
		if value != ActivityIncident {
			sel.Environment = ""
			sel.IncidentType = ""
			sel.Equipment = ""
		}
	case FieldEnvironment:
		sel.Environment = value
	case FieldIncidentType:
		sel.IncidentType = value
		sel.Equipment = ""
	case FieldEquipment:
		sel.Equipment = value
	case FieldApproxDuration:
		sel.ApproxDuration = value
	}
	return sel
}

// RequiresPavilion reports whether the selected site has pavilions to choose
// from. Sites without pavilions skip the pavilion step entirely.
func RequiresPavilion(sel Selection, tree OptionTree) bool {
	if sel.Site == "" {
		return false
	}
	return len(tree.PavilionsBySite[sel.Site]) > 0
}

// RequiresIncidentFields reports whether the incident detail fields are
// mandatory for the selected activity type.
func RequiresIncidentFields(sel Selection) bool {
	return sel.ActivityType == ActivityIncident
}
