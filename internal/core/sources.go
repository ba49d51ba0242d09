package core

// Source keys.
const (
	SourceLife   = "life"
	SourceHealth = "health"
)

func init() {
	registerLife()
	registerHealth()
}

func registerLife() {
	Register(SourceDefinition{
		Info: SourceInfo{
			Key:       SourceLife,
			Label:     "Life expectancy",
			Directory: "life-expectancy-hmd-unwpp",
			File:      "life-expectancy-hmd-unwpp.csv",
			Value:     LifeExpectancyColumn,
		},
		FieldSpecs: []FieldSpec{
			{Name: ColEntity, Type: FieldText, Required: true},
			{Name: ColCode, Type: FieldText, Required: true},
			{Name: ColYear, Type: FieldText, Required: true},
			{Name: LifeExpectancyColumn, Type: FieldNumeric, Required: true},
		},
	})
}

func registerHealth() {
	Register(SourceDefinition{
		Info: SourceInfo{
			Key:       SourceHealth,
			Label:     "Healthcare expenditure",
			Directory: "total-healthcare-expenditure-gdp",
			File:      "total-healthcare-expenditure-gdp.csv",
			Value:     HealthExpenditureColumn,
		},
		FieldSpecs: []FieldSpec{
			{Name: ColEntity, Type: FieldText, Required: true},
			{Name: ColCode, Type: FieldText, Required: true},
			{Name: ColYear, Type: FieldText, Required: true},
			{Name: HealthExpenditureColumn, Type: FieldNumeric, Required: true},
		},
	})
}
