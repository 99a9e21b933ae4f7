// Package profile holds the client profile collected by the discovery wizard.
package profile

// Module identifies a purchasable product offering.
type Module string

const (
	ERP             Module = "erp"
	CRM             Module = "crm"
	GMAO            Module = "gmao"
	HR              Module = "hr"
	SGA             Module = "sga"
	Portal          Module = "portal"
	AI              Module = "ai"
	FlexygoCustom   Module = "flexygoCustom"
	SAT             Module = "sat"
	DocDigitization Module = "docDigitization"
)

// Modules lists every known module in canonical order.
var Modules = []Module{ERP, CRM, GMAO, HR, SGA, Portal, AI, FlexygoCustom, SAT, DocDigitization}

var moduleNames = map[Module]string{
	ERP:             "ERP (Gestión Empresarial)",
	CRM:             "CRM (Ventas y Clientes)",
	GMAO:            "GMAO (Mantenimiento)",
	HR:              "HR (Recursos Humanos)",
	SGA:             "SGA (Logística)",
	Portal:          "Portal de Cliente/Proveedor",
	AI:              "Soluciones con IA",
	FlexygoCustom:   "Proyecto Personalizado Flexygo",
	SAT:             "SAT (Servicio de Asistencia Técnica)",
	DocDigitization: "Digitalización Documental",
}

// Known reports whether m is one of the offered modules.
func (m Module) Known() bool {
	_, ok := moduleNames[m]
	return ok
}

// DisplayName returns the human-readable module name, or the raw key.
func (m Module) DisplayName() string {
	if name, ok := moduleNames[m]; ok {
		return name
	}
	return string(m)
}

// ProductSelection is the set of module flags chosen in the wizard.
type ProductSelection map[Module]bool

// Selected reports whether m is a known module flagged true.
func (p ProductSelection) Selected(m Module) bool {
	return m.Known() && p[m]
}

// Active returns the selected modules in canonical order.
func (p ProductSelection) Active() []Module {
	active := make([]Module, 0, len(Modules))
	for _, m := range Modules {
		if p[m] {
			active = append(active, m)
		}
	}
	return active
}

// Priority is the commercial priority assigned to the opportunity.
type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Media"
	PriorityLow    Priority = "Baja"
)

// ClientProfile is the full wizard payload. The pricing engine only reads
// Size, CurrentUsers, DigitalMaturity, Products and Details.
type ClientProfile struct {
	CompanyName         string           `json:"companyName"`
	CIF                 string           `json:"cif"`
	ContactName         string           `json:"contactName"`
	Email               string           `json:"email"`
	Sector              string           `json:"sector"`
	Size                string           `json:"size"`
	CurrentUsers        *int             `json:"currentUsers,omitempty"`
	DigitalMaturity     int              `json:"digitalMaturity"`
	CurrentSoftware     string           `json:"currentSoftware"`
	CurrentAppsUsers    string           `json:"currentAppsUsers"`
	DigitizationContext string           `json:"digitizationContext"`
	MainPainPoints      string           `json:"mainPainPoints"`
	Products            ProductSelection `json:"products"`
	Details             ModuleDetails    `json:"details"`
	Expectations        string           `json:"expectations"`
	CustomerCharacter   string           `json:"customerCharacter"`
	Priority            Priority         `json:"priority"`
}

// New returns the empty profile the wizard starts from.
func New() ClientProfile {
	products := make(ProductSelection, len(Modules))
	for _, m := range Modules {
		products[m] = false
	}
	return ClientProfile{
		Sector:          "Fabricación",
		Size:            "1-5",
		DigitalMaturity: 5,
		Products:        products,
		Details:         ModuleDetails{},
		Priority:        PriorityMedium,
	}
}
