package ir

// GearState holds the computed values for one gear.
// Speed, Torque and Efficiency stay nil for gears the root never reaches;
// the root itself has no Efficiency.
type GearState struct {
	Index      int      `json:"index"`
	Type       GearType `json:"type"`
	Teeth      int      `json:"teeth"`
	Radius     float64  `json:"radius"`
	Module     float64  `json:"module"`
	Speed      *float64 `json:"speed"`
	Torque     *float64 `json:"torque"`
	Efficiency *float64 `json:"efficiency"`
}

// Reached reports whether propagation assigned this gear a speed.
func (s GearState) Reached() bool {
	return s.Speed != nil
}

// TransmissionEvent records one traversed edge.
type TransmissionEvent struct {
	From        int     `json:"from"`
	To          int     `json:"to"`
	GearRatio   float64 `json:"gear_ratio"`   // teeth(to) / teeth(from), 0 when teeth(from) is 0
	RadiusRatio float64 `json:"radius_ratio"` // radius(to) / radius(from), 1 when radius(from) is 0
	Speed       float64 `json:"speed"`
	Torque      float64 `json:"torque"`
	Efficiency  float64 `json:"efficiency"`
}

// FinalGear is the highest-index gear that received a speed.
type FinalGear struct {
	Index  int     `json:"index"`
	Speed  float64 `json:"speed"`
	Torque float64 `json:"torque"`
}

// CompatWarning flags an edge whose gear types fall outside the
// compatibility table.
type CompatWarning struct {
	From     int      `json:"from"`
	To       int      `json:"to"`
	FromType GearType `json:"from_type"`
	ToType   GearType `json:"to_type"`
	Message  string   `json:"message"`
	Level    string   `json:"level"` // "warning"
}

// Result is the complete output of one calculation.
type Result struct {
	RunID     string              `json:"run_id"`
	Name      string              `json:"name,omitempty"`
	TrainHash string              `json:"train_hash"`
	Events    []TransmissionEvent `json:"events"`
	States    []GearState         `json:"states"`
	Final     FinalGear           `json:"final"`
	Warnings  []CompatWarning     `json:"warnings,omitempty"`
}

// Modules returns the module of every gear by index.
func (r *Result) Modules() []float64 {
	modules := make([]float64, len(r.States))
	for i, s := range r.States {
		modules[i] = s.Module
	}
	return modules
}

// SpeedSeries returns speed by gear index, 0 for unreached gears.
func (r *Result) SpeedSeries() []float64 {
	series := make([]float64, len(r.States))
	for i, s := range r.States {
		if s.Speed != nil {
			series[i] = *s.Speed
		}
	}
	return series
}

// TorqueSeries returns torque by gear index, 0 for unreached gears.
func (r *Result) TorqueSeries() []float64 {
	series := make([]float64, len(r.States))
	for i, s := range r.States {
		if s.Torque != nil {
			series[i] = *s.Torque
		}
	}
	return series
}
