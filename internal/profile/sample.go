package profile

// Sample returns the demonstration profile used to pre-fill the wizard.
func Sample() ClientProfile {
	p := New()
	p.CompanyName = "Suministros Industriales Levante S.L."
	p.CIF = "B46001234"
	p.ContactName = "Francisco Vidal"
	p.Sector = "Distribución"
	p.Size = "21-40"
	p.DigitalMaturity = 4
	p.CurrentSoftware = "FactuSol y carpetas compartidas"
	p.CurrentAppsUsers = "Oficina: 8, Almacén: 12, Dirección: 3"
	p.DigitizationContext = "Sin integración entre almacén y ventas. Errores constantes en stock real."
	p.MainPainPoints = "Roturas de stock, falta de control en pedidos de compra y duplicidad de datos."
	p.Expectations = "Controlar el 100% de las ubicaciones del almacén y automatizar la recepción de facturas."
	p.CustomerCharacter = "Enfocado en resultados, busca simplicidad y rapidez de implantación."

	for _, m := range []Module{ERP, CRM, SGA, Portal, AI, DocDigitization} {
		p.Products[m] = true
	}

	p.Details = ModuleDetails{
		ERP: flags(map[string]bool{
			"stockManagement": true, "traceability": true, "accounting": true, "manufacturing": false,
			"sales": true, "purchase": true, "verifactuSII": true, "taxModels": true,
			"costAnalysis": true, "projectManagement": false, "multiCompany": false, "financial": true,
		}),
		CRM: flags(map[string]bool{
			"opportunities": true, "marketing": true, "service": false, "mobile": true,
			"outlookIntegration": true, "leadScoring": false, "salesPipeline": true,
		}),
		SGA: func() ModuleDetail {
			d := flags(map[string]bool{
				"picking": true, "packing": true, "rfid": false, "waves": true,
				"crossDocking": false, "shippingIntegration": true,
			})
			d.SetCount("warehouseCount", 1)
			d.SetCount("locationsCount", 1200)
			return d
		}(),
		DocDigitization: flags(map[string]bool{
			"ocr": true, "workflow": true, "cloudStorage": true,
			"erpIntegration": true, "digitalCert": true, "expenseNotes": false,
		}),
		AI: flags(map[string]bool{
			"forecasting": true, "automation": true, "chat": false,
			"sentimentAnalysis": false, "documentExtraction": true,
		}),
	}
	return p
}

func flags(values map[string]bool) ModuleDetail {
	var d ModuleDetail
	for k, v := range values {
		d.SetFlag(k, v)
	}
	return d
}
