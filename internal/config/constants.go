package config

// Application constants
const (
	AppName    = "accidentcli"
	AppVersion = "1.0.0"

	// Directories, relative to the base directory
	DefaultDataDir   = "data"
	DefaultOutputDir = "tableau"
	DefaultChartsDir = "visualizations"
	DefaultLogsDir   = "logs"

	// Analysis defaults
	DefaultTopN     = 10
	DefaultChartDPI = 300

	// Region label column and the growth column appended by the growth stage
	StateColumn      = "State/UT"
	GrowthRateColumn = "Growth_Rate"

	// Well-known output files
	StateAccidentsExport  = "state_accidents_tableau.csv"
	StateFatalitiesExport = "state_fatalities_tableau.csv"
	DashboardWorkbook     = "road_accidents_dashboard.xlsx"
	SummaryJSON           = "summary.json"
	RunManifestJSON       = "run_manifest.json"
	MetricsTextfile       = "accidents.prom"
)

// DatasetID identifies one of the input tables
type DatasetID string

const (
	StateAccidents  DatasetID = "state_accidents"
	StateFatalities DatasetID = "state_fatalities"
	CollisionTypes  DatasetID = "collision_types"
	Violations      DatasetID = "violations"
	SafetyDevices   DatasetID = "safety_devices"
	RoadUsers       DatasetID = "road_users"
)

// Dataset describes one input table and its conventional file name
type Dataset struct {
	ID       DatasetID
	Title    string
	FileName string
	// Required datasets abort a pipeline run when they cannot be loaded
	Required bool
}

var datasets = []Dataset{
	{ID: StateAccidents, Title: "state accidents", FileName: "state_wise_accidents.csv", Required: true},
	{ID: StateFatalities, Title: "state fatalities", FileName: "state_wise_fatalities.csv", Required: true},
	{ID: CollisionTypes, Title: "collision types", FileName: "collision_types.csv"},
	{ID: Violations, Title: "violations", FileName: "violations.csv"},
	{ID: SafetyDevices, Title: "safety devices", FileName: "safety_devices.csv"},
	{ID: RoadUsers, Title: "road users", FileName: "road_users_fatalities.csv"},
}

// Datasets returns the dataset catalogue in load order
func Datasets() []Dataset {
	return append([]Dataset(nil), datasets...)
}

// LookupDataset finds a dataset by ID
func LookupDataset(id DatasetID) (Dataset, bool) {
	for _, ds := range datasets {
		if ds.ID == id {
			return ds, true
		}
	}
	return Dataset{}, false
}
