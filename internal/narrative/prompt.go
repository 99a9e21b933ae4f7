// Package narrative composes the consultant-style proposal summary that
// accompanies a budget.
package narrative

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Simplici0/discovery/internal/export"
	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
)

// Fallback is returned whenever a narrative cannot be generated.
const Fallback = "No se pudo generar el resumen automáticamente en este momento."

var promptTemplate = template.Must(template.New("prompt").Parse(`Eres un Consultor Estratégico Senior de AHORA (empresa líder en software de gestión).
Tu objetivo es analizar una toma de requerimientos y generar un informe persuasivo y profesional.

PERFIL DEL CLIENTE:
- Empresa: {{.Profile.CompanyName}}
- Sector: {{.Profile.Sector}}
- Tamaño: {{.Profile.Size}} empleados
- Perfil del Interlocutor: {{.Profile.CustomerCharacter}}
- Prioridad: {{.Profile.Priority}}

SITUACIÓN ACTUAL Y PAIN POINTS:
- Software: {{.Profile.CurrentSoftware}}
- Usuarios: {{.Profile.CurrentAppsUsers}}
- Contexto de digitalización: {{.Profile.DigitizationContext}}
- Problemas Críticos: {{.Profile.MainPainPoints}}
- Madurez Digital: {{.Profile.DigitalMaturity}}/10

ALCANCE TÉCNICO PROPUESTO (Suite AHORA 5):
{{range .Modules}}- {{.}}
{{else}}- (sin módulos seleccionados)
{{end}}
DETALLES DE FUNCIONALIDADES SELECCIONADAS:
{{.Details}}

ESTIMACIÓN ECONÓMICA PRELIMINAR:
- Inversión Inicial (Servicios): {{.OneTime}}
- Coste Recurrente Anual (Licencias + Mantenimiento): {{.Recurring}}

DESGLOSE:
{{.Breakdown}}
OBJETIVOS DEL CLIENTE: {{.Profile.Expectations}}

REGLAS DEL INFORME:
1. Usa un tono que encaje con el carácter "{{.Profile.CustomerCharacter}}".
2. RESUMEN EJECUTIVO: Centrado en ROI y resolución de los pain points indicados.
3. DIAGNÓSTICO: Analiza por qué su sistema actual ({{.Profile.CurrentSoftware}}) le está haciendo perder dinero/eficiencia.
4. ARQUITECTURA: Explica cómo los módulos seleccionados solucionan sus problemas específicos.
5. VALOR DIFERENCIAL AHORA: Menciona obligatoriamente el "Mantenimiento Perpetuo", ser "Fabricantes" y el bajo "TCO".
6. ESTRATEGIA: Da consejos al comercial para cerrar la venta basándose en el perfil del cliente.
7. No modifiques las cifras de la estimación económica.

Escribe el informe en Español de España, de forma estructurada y con viñetas.
`))

type promptData struct {
	Profile   profile.ClientProfile
	Modules   []string
	Details   string
	OneTime   string
	Recurring string
	Breakdown string
}

// BuildPrompt renders the generation prompt for p and its computed budget.
// Only selected modules and their details are included.
func BuildPrompt(p profile.ClientProfile, b pricing.BudgetResult, currency string) (string, error) {
	active := p.Products.Active()

	modules := make([]string, 0, len(active))
	details := make(profile.ModuleDetails, len(active))
	for _, m := range active {
		modules = append(modules, m.DisplayName())
		if d, ok := p.Details[m]; ok {
			details[m] = d
		}
	}

	raw, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode module details: %w", err)
	}

	var sb strings.Builder
	err = promptTemplate.Execute(&sb, promptData{
		Profile:   p,
		Modules:   modules,
		Details:   string(raw),
		OneTime:   export.Money(b.TotalOneTime, currency),
		Recurring: export.Money(b.TotalRecurringYearly, currency),
		Breakdown: export.BudgetText(b, currency),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
