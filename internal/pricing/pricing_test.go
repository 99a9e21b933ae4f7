package pricing

import (
	"math"
	"reflect"
	"testing"

	"github.com/Simplici0/discovery/internal/profile"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func users(n int) *int { return &n }

func selection(modules ...profile.Module) profile.ProductSelection {
	p := profile.ProductSelection{}
	for _, m := range modules {
		p[m] = true
	}
	return p
}

func detail(flags map[string]bool, counts map[string]int) profile.ModuleDetail {
	var d profile.ModuleDetail
	for k, v := range flags {
		d.SetFlag(k, v)
	}
	for k, v := range counts {
		d.SetCount(k, v)
	}
	return d
}

func assertAdditive(t *testing.T, r BudgetResult) {
	t.Helper()
	var oneTime, recurring float64
	for _, l := range r.Services {
		oneTime += l.OneTime
		if l.Recurring != 0 {
			t.Fatalf("service line %q has recurring amount %v", l.Concept, l.Recurring)
		}
	}
	for _, l := range r.Recurring {
		recurring += l.Recurring
		if l.OneTime != 0 {
			t.Fatalf("recurring line %q has one-time amount %v", l.Concept, l.OneTime)
		}
	}
	if oneTime != r.TotalOneTime {
		t.Fatalf("totalOneTime = %v, sum of services = %v", r.TotalOneTime, oneTime)
	}
	if recurring != r.TotalRecurringYearly {
		t.Fatalf("totalRecurringYearly = %v, sum of recurring = %v", r.TotalRecurringYearly, recurring)
	}
}

func TestCalculateBudget_SingleModuleMinimumTier(t *testing.T) {
	p := profile.ClientProfile{CurrentUsers: users(3), Products: selection(profile.ERP)}

	result := CalculateBudget(p)

	want := []BudgetLineItem{{Concept: "AHORA ERP - Licencia y mantenimiento anual", Recurring: 630 * 3}}
	if !reflect.DeepEqual(result.Recurring, want) {
		t.Fatalf("recurring = %+v, want %+v", result.Recurring, want)
	}
	if len(result.Services) != 3 {
		t.Fatalf("expected 3 service lines, got %d", len(result.Services))
	}
	nearlyEqual(t, "analysis", result.Services[0].OneTime, 1350)
	nearlyEqual(t, "implementation", result.Services[1].OneTime, 3861)
	nearlyEqual(t, "training", result.Services[2].OneTime, 1200)
	nearlyEqual(t, "totalOneTime", result.TotalOneTime, 6411)
	nearlyEqual(t, "totalRecurringYearly", result.TotalRecurringYearly, 1890)
}

func TestCalculateBudget_ZeroSelection(t *testing.T) {
	p := profile.ClientProfile{
		Size:     "61-100",
		Products: profile.ProductSelection{profile.ERP: false, profile.Module("legacy"): true},
		Details: profile.ModuleDetails{
			profile.SGA: detail(nil, map[string]int{"warehouseCount": 4}),
		},
	}

	result := CalculateBudget(p)

	if result.Services == nil || result.Recurring == nil {
		t.Fatalf("expected empty, non-nil slices: %+v", result)
	}
	if len(result.Services) != 0 || len(result.Recurring) != 0 {
		t.Fatalf("expected no lines, got %+v", result)
	}
	nearlyEqual(t, "totalOneTime", result.TotalOneTime, 0)
	nearlyEqual(t, "totalRecurringYearly", result.TotalRecurringYearly, 0)
}

func TestCalculateBudget_Idempotent(t *testing.T) {
	p := profile.Sample()

	first := CalculateBudget(p)
	second := CalculateBudget(p)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestCalculateBudget_RecurringNeverDecreasesWithCount(t *testing.T) {
	all := selection(profile.Modules...)
	prev := -1.0
	for n := 0; n <= 130; n++ {
		result := CalculateBudget(profile.ClientProfile{CurrentUsers: users(n), Products: all})
		if result.TotalRecurringYearly < prev {
			t.Fatalf("recurring dropped from %v to %v at count %d", prev, result.TotalRecurringYearly, n)
		}
		prev = result.TotalRecurringYearly
	}
}

func TestCalculateBudget_TotalsEqualLineSums(t *testing.T) {
	profiles := []profile.ClientProfile{
		profile.Sample(),
		{Size: "100+", DigitalMaturity: 1, Products: selection(profile.Modules...)},
		{CurrentUsers: users(51), DigitalMaturity: 9, Products: selection(profile.HR, profile.SGA)},
		{CurrentUsers: users(0), Products: selection(profile.SAT)},
	}

	for _, p := range profiles {
		assertAdditive(t, CalculateBudget(p))
	}
}

func TestCalculateBudget_RiderGating(t *testing.T) {
	base := profile.ClientProfile{CurrentUsers: users(12), Products: selection(profile.ERP)}

	withoutFlag := base
	withoutFlag.Details = profile.ModuleDetails{
		profile.ERP: detail(map[string]bool{"accounting": true, "taxModels": true, "verifactuSII": false}, nil),
	}
	withFlag := base
	withFlag.Details = profile.ModuleDetails{
		profile.ERP: detail(map[string]bool{"verifactuSII": true}, nil),
	}

	off := CalculateBudget(withoutFlag)
	on := CalculateBudget(withFlag)

	if len(off.Recurring) != 1 {
		t.Fatalf("expected license line only, got %+v", off.Recurring)
	}
	if len(on.Recurring) != 3 {
		t.Fatalf("expected license plus two rider lines, got %+v", on.Recurring)
	}
	if on.Recurring[1].Concept != "Verifactu y SII - Cuota fija" || on.Recurring[1].Recurring != 360 {
		t.Fatalf("unexpected fixed rider: %+v", on.Recurring[1])
	}
	if on.Recurring[2].Concept != "Verifactu y SII - Cuota por usuarios" || on.Recurring[2].Recurring != 420 {
		t.Fatalf("unexpected tiered rider: %+v", on.Recurring[2])
	}
	nearlyEqual(t, "rider delta", on.TotalRecurringYearly-off.TotalRecurringYearly, 780)
}

func TestCalculateBudget_CustomDevelopmentAddsFixedHours(t *testing.T) {
	withoutCustom := profile.ClientProfile{CurrentUsers: users(3), Products: selection(profile.ERP, profile.CRM)}
	withCustom := profile.ClientProfile{CurrentUsers: users(3), Products: selection(profile.ERP, profile.FlexygoCustom)}

	off := CalculateBudget(withoutCustom)
	on := CalculateBudget(withCustom)

	nearlyEqual(t, "analysis without custom", off.Services[0].OneTime, 1800)
	nearlyEqual(t, "analysis with custom", on.Services[0].OneTime, 3600)
	nearlyEqual(t, "implementation without custom", off.Services[1].OneTime, 7956)
	nearlyEqual(t, "implementation with custom", on.Services[1].OneTime, 11076)
	nearlyEqual(t, "training unaffected", on.Services[2].OneTime, off.Services[2].OneTime)
}

func TestCalculateBudget_TrainingScalesAboveThreshold(t *testing.T) {
	small := CalculateBudget(profile.ClientProfile{CurrentUsers: users(20), Products: selection(profile.AI)})
	large := CalculateBudget(profile.ClientProfile{CurrentUsers: users(21), Products: selection(profile.AI)})

	nearlyEqual(t, "training at threshold", small.Services[2].OneTime, 1200)
	nearlyEqual(t, "training above threshold", large.Services[2].OneTime, 1800)
}

func TestCalculateBudget_MaintenanceRoundsHalfAwayFromZero(t *testing.T) {
	p := profile.ClientProfile{
		Size:     "1-5",
		Products: selection(profile.HR),
		Details:  profile.ModuleDetails{profile.HR: detail(nil, map[string]int{"employees": 51})},
	}

	result := CalculateBudget(p)

	nearlyEqual(t, "hr license", result.Recurring[0].Recurring, 3825)
	nearlyEqual(t, "hr maintenance", result.Recurring[1].Recurring, 1913)
}

func TestCalculateBudget_SurchargesUseTheirOwnDefaults(t *testing.T) {
	p := profile.ClientProfile{CurrentUsers: users(30), Products: selection(profile.SGA, profile.SAT)}

	result := CalculateBudget(p)

	concepts := make(map[string]float64)
	for _, l := range result.Recurring {
		concepts[l.Concept] = l.Recurring
	}
	if _, ok := concepts["SGA - Almacenes adicionales"]; ok {
		t.Fatalf("single default warehouse must not be surcharged: %+v", result.Recurring)
	}
	if _, ok := concepts["SGA - Bloques de 1.000 ubicaciones adicionales"]; ok {
		t.Fatalf("missing location count must not be surcharged: %+v", result.Recurring)
	}
	nearlyEqual(t, "sat technicians", concepts["AHORA SAT - Técnicos de campo"], 700)
}

func TestCalculateBudget_DetailWithoutSelectionIsIgnored(t *testing.T) {
	p := profile.ClientProfile{
		CurrentUsers: users(5),
		Products:     selection(profile.ERP),
		Details: profile.ModuleDetails{
			profile.SGA: detail(map[string]bool{"rfid": true}, map[string]int{"warehouseCount": 9}),
		},
	}

	result := CalculateBudget(p)

	if len(result.Recurring) != 1 {
		t.Fatalf("expected only the ERP line, got %+v", result.Recurring)
	}
}

func TestCalculateBudget_NegativeCountsClampToZero(t *testing.T) {
	p := profile.ClientProfile{
		CurrentUsers: users(-12),
		Products:     selection(profile.ERP, profile.CRM),
	}

	result := CalculateBudget(p)

	// minCount lifts both per-user modules to a single user.
	nearlyEqual(t, "erp", result.Recurring[0].Recurring, 630)
	nearlyEqual(t, "crm", result.Recurring[1].Recurring, 210)
	assertAdditive(t, result)
}

func TestCalculateBudget_FullSelectionGolden(t *testing.T) {
	p := profile.ClientProfile{
		Size:            "21-40",
		DigitalMaturity: 4,
		Products:        selection(profile.Modules...),
		Details: profile.ModuleDetails{
			profile.ERP:    detail(map[string]bool{"verifactuSII": true, "multiCompany": false}, nil),
			profile.CRM:    detail(map[string]bool{"marketing": true}, map[string]int{"users": 8}),
			profile.GMAO:   detail(map[string]bool{"mobileApp": false}, nil),
			profile.HR:     detail(map[string]bool{"payroll": true}, map[string]int{"employees": 32}),
			profile.SGA:    detail(map[string]bool{"rfid": false}, map[string]int{"warehouseCount": 2, "locationsCount": 1200, "users": 12}),
			profile.Portal: detail(map[string]bool{"ecommerce": true}, nil),
			profile.AI:     detail(map[string]bool{"chat": false}, nil),
			profile.SAT:    detail(map[string]bool{"digitalSignature": true}, map[string]int{"techniciansCount": 4}),
			profile.DocDigitization: detail(map[string]bool{"digitalCert": true}, nil),
		},
	}

	want := BudgetResult{
		Services: []BudgetLineItem{
			{Concept: "Análisis y Consultoría de Procesos", OneTime: 7200},
			{Concept: "Implantación y Configuración Técnica", OneTime: 54600},
			{Concept: "Formación AHORA Academy", OneTime: 18000},
		},
		Recurring: []BudgetLineItem{
			{Concept: "AHORA ERP - Licencia y mantenimiento anual", Recurring: 13120},
			{Concept: "Verifactu y SII - Cuota fija", Recurring: 360},
			{Concept: "Verifactu y SII - Cuota por usuarios", Recurring: 660},
			{Concept: "AHORA CRM Flexygo - Suscripción", Recurring: 1520},
			{Concept: "CRM Marketing Automation - Cuota anual", Recurring: 900},
			{Concept: "AHORA GMAO - Licencia", Recurring: 5250},
			{Concept: "AHORA GMAO - Mantenimiento anual (50%)", Recurring: 2625},
			{Concept: "AHORA RRHH - Licencia", Recurring: 3600},
			{Concept: "AHORA RRHH - Mantenimiento anual (50%)", Recurring: 1800},
			{Concept: "Nómina - Cuota de actualización legal", Recurring: 480},
			{Concept: "Nómina - Cuota por empleados", Recurring: 480},
			{Concept: "AHORA SGA - Licencia", Recurring: 2280},
			{Concept: "AHORA SGA - Mantenimiento anual (50%)", Recurring: 1140},
			{Concept: "SGA - Almacenes adicionales", Recurring: 650},
			{Concept: "SGA - Bloques de 1.000 ubicaciones adicionales", Recurring: 300},
			{Concept: "Portal Cliente/Proveedor - Suscripción", Recurring: 2400},
			{Concept: "Portal B2B eCommerce - Cuota anual", Recurring: 1800},
			{Concept: "Soluciones IA - Suscripción", Recurring: 2400},
			{Concept: "Plataforma Flexygo - Runtime y soporte", Recurring: 960},
			{Concept: "AHORA SAT - Licencia", Recurring: 1500},
			{Concept: "AHORA SAT - Técnicos de campo", Recurring: 1400},
			{Concept: "SAT Firma digital - Cuota anual", Recurring: 300},
			{Concept: "Digitalización Documental - Cuota servicio", Recurring: 900},
			{Concept: "Certificación digital - Cuota anual", Recurring: 240},
		},
		TotalOneTime:         79800,
		TotalRecurringYearly: 47065,
	}

	got := CalculateBudget(p)

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("budget mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestProfileCount_CurrentUsersWinsOverSize(t *testing.T) {
	e := Default()

	tests := []struct {
		name string
		p    profile.ClientProfile
		want int
	}{
		{"bucket", profile.ClientProfile{Size: "21-40"}, 25},
		{"smallest bucket", profile.ClientProfile{Size: "1-5"}, 3},
		{"unknown bucket uses fallback", profile.ClientProfile{Size: "huge"}, 25},
		{"explicit count", profile.ClientProfile{Size: "21-40", CurrentUsers: users(7)}, 7},
		{"explicit zero", profile.ClientProfile{Size: "100+", CurrentUsers: users(0)}, 0},
		{"negative clamps", profile.ClientProfile{CurrentUsers: users(-3)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ProfileCount(tt.p); got != tt.want {
				t.Fatalf("ProfileCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
