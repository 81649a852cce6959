package form

// DefaultOptionTree is the reference data seeded when the settings store has
// no stored tree yet. Values mirror the catalogs the university started with.
func DefaultOptionTree() OptionTree {
	return OptionTree{
		Sites: []string{"Moche", "Mansiche", "Colón"},
		PavilionsBySite: map[string][]string{
			"Moche":    {"P. Principal", "P. Santo Toribio", "P. San Francisco", "Explanada"},
			"Mansiche": {"P. Principal", "P. Santo Toribio", "P. San Francisco", "Explanada"},
			"Colón":    {"P. Principal", "P. Santo Toribio", "P. San Francisco", "Explanada"},
		},
		ActivityTypes: []string{ActivityIncident, "Mudanza", "Visita técnica/campo", "Soporte evento"},
		EnvironmentsByPavilion: map[string][]string{
			"P. Principal":     {"Sala de Reuniones", "Administrativo"},
			"P. Santo Toribio": {"Aula/Laboratorio", "Administrativo"},
			"P. San Francisco": {"Aula/Laboratorio", "Administrativo"},
			"Explanada":        {"Aula/Laboratorio", "Administrativo"},
		},
		IncidentTypes: []string{"Hardware", "Software", "Red / Conectividad", "Acceso / Seguridad", "Impresión / Escaneo", "Infraestructura"},
		EquipmentByIncidentType: map[string][]string{
			"Hardware":            {"Proyector", "Monitor", "PC", "Laptop", "Impresora", "Mouse", "Teclado", "Cámara", "Audífonos", "Pizarra"},
			"Software":            {"Office", "Programa", "Plataforma (ERP/Blackboard)", "Licencia de cuenta"},
			"Red / Conectividad":  {"Conectividad", "Internet", "Wifi", "Antena Wifi"},
			"Acceso / Seguridad":  {"Plataforma (ERP/Blackboard)", "Licencia de cuenta"},
			"Impresión / Escaneo": {"Impresora", "Supresor", "Extensión"},
			"Infraestructura":     {"Pizarra", "Plumones", "Extensión", "Supresor"},
		},
		ApproxDurations: []string{"5 minutos", "10 minutos", "15 minutos", "20 minutos", "Mayor a 20 minutos"},
	}
}
