package domain

// Catalog agrupa os conjuntos fechados de códigos aceitos pelo motor de
// alocação. Os conjuntos vêm da configuração: qualquer código fora deles
// é rejeitado, nunca aceito silenciosamente.
type Catalog struct {
	Locations   map[string]string // código de 2 letras -> nome da loja
	Departments map[string]string // código de 1 letra  -> nome do departamento
	Conditions  map[string]string // código de 1 letra  -> condição do veículo
}

// DefaultCatalog retorna os conjuntos do grupo de concessionárias de
// referência. A configuração pode substituí-los por completo via env.
func DefaultCatalog() Catalog {
	return Catalog{
		Locations: map[string]string{
			"CL": "Lake Chevrolet",
			"CF": "Pritchard Ford of Clear Lake",
			"MC": "Pritchard Motor Company of Mason City",
			"MG": "Pritchard GMC",
			"MN": "Pritchard Nissan",
			"FC": "Chrysler of Forest City",
			"FG": "Forest City Auto Center",
			"BR": "Pritchard Auto Britt",
			"GR": "Pritchard Auto Garner",
		},
		Departments: map[string]string{
			"R": "Retail",
			"F": "Fleet/Commercial",
			"A": "All-Four/NIE",
		},
		Conditions: map[string]string{
			"N": "New",
			"U": "Used",
			"C": "CPO (Certified Pre-Owned)",
			"D": "Demo/Loaner",
		},
	}
}

// ValidLocation verifica se o código de loja pertence ao conjunto configurado.
func (c Catalog) ValidLocation(code string) bool {
	_, ok := c.Locations[code]
	return ok
}

// ValidDepartment verifica se o código de departamento pertence ao conjunto configurado.
func (c Catalog) ValidDepartment(code string) bool {
	_, ok := c.Departments[code]
	return ok
}

// ValidCondition verifica se o código de condição pertence ao conjunto configurado.
func (c Catalog) ValidCondition(code string) bool {
	_, ok := c.Conditions[code]
	return ok
}
