package render

import (
	"strings"

	"github.com/jameshartig/energyreport/pkg/types"
)

// Translations holds the localized strings of a report. Placeholders use the
// {name} form and are filled with Format.
type Translations struct {
	Language string

	Title          string
	CoverSubtitle  string
	CoverPeriod    string
	CoverDashboard string
	CoverBucket    string
	CoverStats     string
	CoverGenerated string

	SummaryTitle        string
	SummaryIntro        string
	SummaryTableTitle   string
	SummaryHeaders      [3]string
	SummaryNoteTotals   string
	SummaryNoteNegative string

	DerivedTableTitle   string
	DerivedHeaders      [2]string
	DerivedEstimated    string
	DerivedTracked      string
	DerivedUntracked    string
	DerivedNoteNegative string

	DetailTitle      string
	DetailIntro      string
	DetailTableTitle string
	DetailHeaders    [4]string

	CO2SectionTitle   string
	CO2SectionIntro   string
	CO2TableTitle     string
	CO2TableHeaders   [3]string
	CO2EmissionLabel  string
	CO2SavingsLabel   string
	CO2BalanceMessage string
	CO2SensorLabels   map[string]string

	ConclusionTitle    string
	ConclusionTotal    string
	ConclusionDominant string
	ConclusionHint     string

	AdviceTitle string

	FooterPath string
	FooterPage string

	TableEmpty     string
	CategoryLabels map[types.Category]string
	BucketLabels   map[types.Bucket]string
	PeriodLabels   map[types.Period]string

	NotificationTitle         string
	NotificationLinePeriod    string
	NotificationLineDashboard string
	NotificationLineFile      string
}

// Format replaces each {key} in s with its value from the pairs list.
func Format(s string, pairs ...string) string {
	if len(pairs) == 0 {
		return s
	}
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(s)
}

// Category returns the localized label of a category.
func (t Translations) Category(c types.Category) string {
	if label, ok := t.CategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Bucket returns the localized label of a bucket.
func (t Translations) Bucket(b types.Bucket) string {
	if label, ok := t.BucketLabels[b]; ok {
		return label
	}
	return string(b)
}

// Period returns the localized label of a period.
func (t Translations) Period(p types.Period) string {
	if label, ok := t.PeriodLabels[p]; ok {
		return label
	}
	return string(p)
}

// CO2Sensor returns the localized label of a CO2 sensor key.
func (t Translations) CO2Sensor(key string) string {
	if label, ok := t.CO2SensorLabels[key]; ok {
		return label
	}
	return key
}

// SupportedLanguage reports whether lang has translations.
func SupportedLanguage(lang string) bool {
	_, ok := translations[types.NormalizeKey(lang)]
	return ok
}

// Languages returns the supported language codes.
func Languages() []string {
	return []string{"en", "fr", "nl"}
}

// Lookup returns the translations for lang, falling back to the default
// language.
func Lookup(lang string) Translations {
	if t, ok := translations[types.NormalizeKey(lang)]; ok {
		return t
	}
	return translations[types.DefaultLanguage]
}

var translations = map[string]Translations{
	"fr": {
		Language:       "fr",
		Title:          "Rapport énergie",
		CoverSubtitle:  "Rapport énergie du {start} au {end}",
		CoverPeriod:    "Période : {period}",
		CoverDashboard: "Tableau d'énergie : {dashboard}",
		CoverBucket:    "Granularité des statistiques : {bucket}",
		CoverStats:     "Statistiques incluses : {count}",
		CoverGenerated: "Rapport généré le : {timestamp}",

		SummaryTitle:        "Résumé global",
		SummaryIntro:        "Cette section présente les totaux consolidés sur la période analysée.",
		SummaryTableTitle:   "Synthèse par catégorie",
		SummaryHeaders:      [3]string{"Catégorie", "Total", "Unité"},
		SummaryNoteTotals:   "Les totaux correspondent à la variation mesurée dans le tableau de bord énergie sur la période sélectionnée.",
		SummaryNoteNegative: "Les valeurs négatives indiquent un flux exporté ou une compensation.",

		DerivedTableTitle:   "Consommation estimée",
		DerivedHeaders:      [2]string{"Indicateur", "Total (kWh)"},
		DerivedEstimated:    "Consommation totale estimée",
		DerivedTracked:      "Consommation des appareils suivis",
		DerivedUntracked:    "Consommation non suivie",
		DerivedNoteNegative: "Les appareils suivis dépassent la consommation estimée : vérifiez la configuration du tableau de bord.",

		DetailTitle:      "Analyse par catégorie / source",
		DetailIntro:      "Chaque statistique suivie est listée avec sa contribution précise afin de faciliter l'analyse fine par origine ou type de consommation.",
		DetailTableTitle: "Détail des statistiques",
		DetailHeaders:    [4]string{"Catégorie", "Statistique", "Total", "Unité"},

		CO2SectionTitle:   "CO2",
		CO2SectionIntro:   "Cette section met en lumière les émissions et économies de CO2 enregistrées par les différents postes.",
		CO2TableTitle:     "Émissions et économies de CO2",
		CO2TableHeaders:   [3]string{"Source", "Total (kgCO2e)", "Impact"},
		CO2EmissionLabel:  "Émission",
		CO2SavingsLabel:   "Économie",
		CO2BalanceMessage: "Émissions totales : {emissions} • Économies : {savings} • Bilan net : {balance}.",
		CO2SensorLabels: map[string]string{
			"co2_electricity": "Électricité",
			"co2_gas":         "Chauffage (gaz / mazout)",
			"co2_water":       "Eau chaude sanitaire",
			"co2_savings":     "Économies / compensation",
		},

		ConclusionTitle:    "Conclusion",
		ConclusionTotal:    "Le flux net observé sur la période atteint {total}.",
		ConclusionDominant: "La catégorie la plus significative est {category} avec {value}.",
		ConclusionHint:     "Pour approfondir l'évolution temporelle et comparer les périodes, référez-vous au tableau de bord Énergie de Home Assistant.",

		AdviceTitle: "Recommandation",

		FooterPath: "Chemin du fichier : {path}",
		FooterPage: "Page {current} sur {total}",

		TableEmpty: "Aucune donnée disponible",
		CategoryLabels: map[types.Category]string{
			types.CategoryProduction:    "Production",
			types.CategoryImport:        "Import réseau",
			types.CategoryExport:        "Export réseau",
			types.CategoryBatteryIn:     "Charge batterie",
			types.CategoryBatteryOut:    "Décharge batterie",
			types.CategoryTrackedDevice: "Appareils suivis",
			types.CategoryGas:           "Gaz",
			types.CategoryWater:         "Eau",
			types.CategoryCO2:           "CO2",
			types.CategoryCost:          "Coût",
			types.CategoryCompensation:  "Compensation",
		},
		BucketLabels: map[types.Bucket]string{types.BucketHour: "heure", types.BucketDay: "jour", types.BucketMonth: "mois"},
		PeriodLabels: map[types.Period]string{types.PeriodDay: "jour", types.PeriodWeek: "semaine", types.PeriodMonth: "mois"},

		NotificationTitle:         "Rapport énergie",
		NotificationLinePeriod:    "Rapport énergie généré pour la période du {start} au {end}.",
		NotificationLineDashboard: "Tableau de bord : {dashboard}",
		NotificationLineFile:      "Fichier : {path}",
	},
	"en": {
		Language:       "en",
		Title:          "Energy Report",
		CoverSubtitle:  "Energy report from {start} to {end}",
		CoverPeriod:    "Period: {period}",
		CoverDashboard: "Energy dashboard: {dashboard}",
		CoverBucket:    "Statistics granularity: {bucket}",
		CoverStats:     "Included statistics: {count}",
		CoverGenerated: "Report generated on: {timestamp}",

		SummaryTitle:        "Overall summary",
		SummaryIntro:        "This section presents the consolidated totals for the analysed period.",
		SummaryTableTitle:   "Summary by category",
		SummaryHeaders:      [3]string{"Category", "Total", "Unit"},
		SummaryNoteTotals:   "Totals correspond to the variation measured in the Energy dashboard over the selected period.",
		SummaryNoteNegative: "Negative values indicate exported energy or compensation.",

		DerivedTableTitle:   "Estimated consumption",
		DerivedHeaders:      [2]string{"Indicator", "Total (kWh)"},
		DerivedEstimated:    "Total estimated consumption",
		DerivedTracked:      "Tracked devices consumption",
		DerivedUntracked:    "Untracked consumption",
		DerivedNoteNegative: "Tracked devices exceed the estimated consumption: check the dashboard configuration.",

		DetailTitle:      "Breakdown by category/source",
		DetailIntro:      "Each tracked statistic is listed with its contribution to help analyse the data by origin or consumption type.",
		DetailTableTitle: "Statistic details",
		DetailHeaders:    [4]string{"Category", "Statistic", "Total", "Unit"},

		CO2SectionTitle:   "CO2",
		CO2SectionIntro:   "This section summarises the CO2 emissions and savings reported by your sensors.",
		CO2TableTitle:     "CO2 emissions and savings",
		CO2TableHeaders:   [3]string{"Source", "Total (kgCO2e)", "Impact"},
		CO2EmissionLabel:  "Emission",
		CO2SavingsLabel:   "Saving",
		CO2BalanceMessage: "Total emissions: {emissions} • Savings: {savings} • Net balance: {balance}.",
		CO2SensorLabels: map[string]string{
			"co2_electricity": "Electricity",
			"co2_gas":         "Heating (gas / oil)",
			"co2_water":       "Domestic hot water",
			"co2_savings":     "Savings / offset",
		},

		ConclusionTitle:    "Conclusion",
		ConclusionTotal:    "The net flow observed over the period is {total}.",
		ConclusionDominant: "The most significant category is {category} with {value}.",
		ConclusionHint:     "For deeper time-based analysis and comparisons, refer to Home Assistant's Energy dashboard.",

		AdviceTitle: "Recommendation",

		FooterPath: "File path: {path}",
		FooterPage: "Page {current} of {total}",

		TableEmpty: "No data available",
		CategoryLabels: map[types.Category]string{
			types.CategoryProduction:    "Production",
			types.CategoryImport:        "Grid import",
			types.CategoryExport:        "Grid export",
			types.CategoryBatteryIn:     "Battery charge",
			types.CategoryBatteryOut:    "Battery discharge",
			types.CategoryTrackedDevice: "Tracked devices",
			types.CategoryGas:           "Gas",
			types.CategoryWater:         "Water",
			types.CategoryCO2:           "CO2",
			types.CategoryCost:          "Cost",
			types.CategoryCompensation:  "Compensation",
		},
		BucketLabels: map[types.Bucket]string{types.BucketHour: "hour", types.BucketDay: "day", types.BucketMonth: "month"},
		PeriodLabels: map[types.Period]string{types.PeriodDay: "day", types.PeriodWeek: "week", types.PeriodMonth: "month"},

		NotificationTitle:         "Energy report",
		NotificationLinePeriod:    "Energy report generated for {start} to {end}.",
		NotificationLineDashboard: "Dashboard: {dashboard}",
		NotificationLineFile:      "File: {path}",
	},
	"nl": {
		Language:       "nl",
		Title:          "Energiarapport",
		CoverSubtitle:  "Energiarapport van {start} tot {end}",
		CoverPeriod:    "Periode: {period}",
		CoverDashboard: "Energiadashboard: {dashboard}",
		CoverBucket:    "Granulariteit van statistieken: {bucket}",
		CoverStats:     "Aantal statistieken: {count}",
		CoverGenerated: "Rapport gegenereerd op: {timestamp}",

		SummaryTitle:        "Samenvatting",
		SummaryIntro:        "Deze sectie toont de totale waarden voor de geanalyseerde periode.",
		SummaryTableTitle:   "Overzicht per categorie",
		SummaryHeaders:      [3]string{"Categorie", "Totaal", "Eenheid"},
		SummaryNoteTotals:   "De totalen komen overeen met de verandering die in het Energiadashboard is gemeten tijdens de geselecteerde periode.",
		SummaryNoteNegative: "Negatieve waarden geven geëxporteerde energie of compensatie weer.",

		DerivedTableTitle:   "Geschat verbruik",
		DerivedHeaders:      [2]string{"Indicator", "Totaal (kWh)"},
		DerivedEstimated:    "Totaal geschat verbruik",
		DerivedTracked:      "Verbruik gevolgde apparaten",
		DerivedUntracked:    "Niet gevolgd verbruik",
		DerivedNoteNegative: "De gevolgde apparaten overschrijden het geschatte verbruik: controleer de configuratie van het dashboard.",

		DetailTitle:      "Analyse per categorie / bron",
		DetailIntro:      "Elke gevolgde statistiek wordt getoond met zijn bijdrage om een gedetailleerde analyse per oorsprong of verbruikstype te vergemakkelijken.",
		DetailTableTitle: "Statistiekdetails",
		DetailHeaders:    [4]string{"Categorie", "Statistiek", "Totaal", "Eenheid"},

		CO2SectionTitle:   "CO2",
		CO2SectionIntro:   "Deze sectie toont de door uw sensoren geregistreerde CO2-uitstoot en besparingen.",
		CO2TableTitle:     "CO2-uitstoot en besparingen",
		CO2TableHeaders:   [3]string{"Bron", "Totaal (kgCO2e)", "Impact"},
		CO2EmissionLabel:  "Uitstoot",
		CO2SavingsLabel:   "Besparing",
		CO2BalanceMessage: "Totale uitstoot: {emissions} • Besparingen: {savings} • Nettoresultaat: {balance}.",
		CO2SensorLabels: map[string]string{
			"co2_electricity": "Elektriciteit",
			"co2_gas":         "Verwarming (gas / stookolie)",
			"co2_water":       "Sanitair warm water",
			"co2_savings":     "Besparingen / compensatie",
		},

		ConclusionTitle:    "Conclusie",
		ConclusionTotal:    "De netto stroom over de periode bedraagt {total}.",
		ConclusionDominant: "De meest bepalende categorie is {category} met {value}.",
		ConclusionHint:     "Raadpleeg het Energiadashboard van Home Assistant voor een diepere tijdsanalyse en vergelijkingen.",

		AdviceTitle: "Aanbeveling",

		FooterPath: "Bestandspad: {path}",
		FooterPage: "Pagina {current} van {total}",

		TableEmpty: "Geen gegevens beschikbaar",
		CategoryLabels: map[types.Category]string{
			types.CategoryProduction:    "Productie",
			types.CategoryImport:        "Netafname",
			types.CategoryExport:        "Netinjectie",
			types.CategoryBatteryIn:     "Batterij laden",
			types.CategoryBatteryOut:    "Batterij ontladen",
			types.CategoryTrackedDevice: "Gevolgde apparaten",
			types.CategoryGas:           "Gas",
			types.CategoryWater:         "Water",
			types.CategoryCO2:           "CO2",
			types.CategoryCost:          "Kosten",
			types.CategoryCompensation:  "Vergoeding",
		},
		BucketLabels: map[types.Bucket]string{types.BucketHour: "uur", types.BucketDay: "dag", types.BucketMonth: "maand"},
		PeriodLabels: map[types.Period]string{types.PeriodDay: "dag", types.PeriodWeek: "week", types.PeriodMonth: "maand"},

		NotificationTitle:         "Energiarapport",
		NotificationLinePeriod:    "Energiarapport gegenereerd voor {start} tot {end}.",
		NotificationLineDashboard: "Dashboard: {dashboard}",
		NotificationLineFile:      "Bestand: {path}",
	},
}
