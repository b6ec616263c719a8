package models

// Global binding names the application under test exposes once initialized.
const (
	SystemGlobal   = "vib34dSystem"
	AgentAPIGlobal = "agentAPI"
)

// Record is the Inspection Record: the flat result of one DOM query pass.
//
// It is produced once by the inspector and consumed once by the report.
// Pass it by value; nothing mutates a Record after it is decoded.
type Record struct {
	SystemLoaded   bool `json:"systemLoaded"`
	AgentAPILoaded bool `json:"agentAPILoaded"`

	NavButtons        int `json:"navButtons"`
	ParameterSliders  int `json:"parameterSliders"`
	GeometrySelector  int `json:"geometrySelector"`
	AdaptiveCards     int `json:"adaptiveCards"`
	GlitchBorders     int `json:"glitchBorders"`
	HolographicLayers int `json:"holographicLayers"`
	GlassShadows      int `json:"glassShadows"`
	AccentElements    int `json:"accentElements"`
	CanvasElements    int `json:"canvasElements"`

	GridSparse int `json:"gridSparse"`
	GridLow    int `json:"gridLow"`
	GridMedium int `json:"gridMedium"`
	GridHigh   int `json:"gridHigh"`
	GridDense  int `json:"gridDense"`

	VideoPlayers int `json:"videoPlayers"`
	AudioPlayers int `json:"audioPlayers"`
	TextPlayers  int `json:"textPlayers"`

	CardsContainer bool `json:"cardsContainer"`

	// AnimationName is informational only. The probe selector targets a
	// pseudo-element, so in practice this reports the body's animation.
	AnimationName string `json:"animationName"`
}

// Field is one printable name/value pair of a Record.
type Field struct {
	Name  string
	Value any
}

// Fields lists every record field in report order.
func (r Record) Fields() []Field {
	return []Field{
		{"systemLoaded", r.SystemLoaded},
		{"agentAPILoaded", r.AgentAPILoaded},
		{"navButtons", r.NavButtons},
		{"parameterSliders", r.ParameterSliders},
		{"geometrySelector", r.GeometrySelector},
		{"adaptiveCards", r.AdaptiveCards},
		{"glitchBorders", r.GlitchBorders},
		{"holographicLayers", r.HolographicLayers},
		{"glassShadows", r.GlassShadows},
		{"accentElements", r.AccentElements},
		{"canvasElements", r.CanvasElements},
		{"gridSparse", r.GridSparse},
		{"gridLow", r.GridLow},
		{"gridMedium", r.GridMedium},
		{"gridHigh", r.GridHigh},
		{"gridDense", r.GridDense},
		{"videoPlayers", r.VideoPlayers},
		{"audioPlayers", r.AudioPlayers},
		{"textPlayers", r.TextPlayers},
		{"cardsContainer", r.CardsContainer},
		{"animationName", r.AnimationName},
	}
}

// Verdict holds the five derived success flags and the overall result.
type Verdict struct {
	Core    bool `json:"core"`
	UI      bool `json:"ui"`
	Cards   bool `json:"cards"`
	WebGL   bool `json:"webgl"`
	Effects bool `json:"effects"`
	Overall bool `json:"overall"`
}
