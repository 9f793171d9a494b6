package ingestion

import (
	"strings"

	"github.com/carelight/guidelines/core"
)

// specialtyKeywords maps lowercase trigger words found in titles and
// topics to the specialty they indicate. First match wins, checked in
// the order of specialtyOrder below so the mapping stays deterministic.
var specialtyKeywords = map[core.Specialty][]string{
	core.SpecialtyCardiology:        {"cardiovascular", "hypertension", "blood pressure", "statin", "cholesterol", "lipid", "aspirin", "atrial fibrillation", "heart"},
	core.SpecialtyEndocrinology:     {"diabetes", "thyroid", "glycemic", "insulin", "osteoporosis", "obesity"},
	core.SpecialtyOncology:          {"cancer", "carcinoma", "neoplasm", "chemotherapy", "tumor"},
	core.SpecialtyInfectiousDisease: {"infection", "antibiotic", "hepatitis", "hiv", "tuberculosis", "pneumonia", "sexually transmitted", "vaccin"},
	core.SpecialtyPsychiatry:        {"depression", "anxiety", "suicide", "substance use", "alcohol", "tobacco", "mental health"},
	core.SpecialtyNeurology:         {"stroke", "dementia", "cognitive", "seizure", "migraine"},
	core.SpecialtyPulmonology:       {"copd", "asthma", "pulmonary", "respiratory", "lung"},
	core.SpecialtyNephrology:        {"kidney", "renal", "dialysis"},
	core.SpecialtyRheumatology:      {"arthritis", "rheumat", "gout", "lupus"},
}

var specialtyOrder = []core.Specialty{
	core.SpecialtyCardiology,
	core.SpecialtyEndocrinology,
	core.SpecialtyOncology,
	core.SpecialtyInfectiousDisease,
	core.SpecialtyPsychiatry,
	core.SpecialtyNeurology,
	core.SpecialtyPulmonology,
	core.SpecialtyNephrology,
	core.SpecialtyRheumatology,
}

// classifySpecialty assigns a specialty from free text, falling back to
// SpecialtyGeneral when no keyword matches.
func classifySpecialty(text string) core.Specialty {
	lower := strings.ToLower(text)
	for _, specialty := range specialtyOrder {
		for _, kw := range specialtyKeywords[specialty] {
			if strings.Contains(lower, kw) {
				return specialty
			}
		}
	}
	return core.SpecialtyGeneral
}
