package ingestion

import (
	"context"
	"log/slog"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// ManualIngester loads the curated guideline set that ships with the
// library. These cover common primary-care topics and are always
// available, so a fresh deployment has searchable content before any
// external source has been fetched.
type ManualIngester struct {
	base
}

func NewManualIngester(docs storage.GuidelineRepository, log storage.RefreshLogRepository, logger *slog.Logger) *ManualIngester {
	return &ManualIngester{base: newBase(core.SourceManual, docs, log, logger)}
}

func (m *ManualIngester) Source() core.Source { return core.SourceManual }

func (m *ManualIngester) Configured() bool { return true }

func (m *ManualIngester) Ingest(ctx context.Context) (*core.IngestionResult, error) {
	return m.run(ctx, func(context.Context) ([]Payload, error) {
		return curatedGuidelines(), nil
	})
}

func curatedGuidelines() []Payload {
	return []Payload{
		{
			Title:     "Hypertension Management in Adults",
			Specialty: core.SpecialtyCardiology,
			Metadata: map[string]string{
				core.MetaGuidelineID:  "manual-htn-adults",
				core.MetaOrganization: "Carelight Clinical Team",
				core.MetaGrade:        "consensus",
			},
			Contents: `Initiate pharmacologic treatment in adults with confirmed blood pressure of 140/90 mmHg or higher, or 130/80 mmHg or higher with established cardiovascular disease or a 10-year ASCVD risk of 10% or greater.

First-line agents are thiazide diuretics, ACE inhibitors, angiotensin receptor blockers, and calcium channel blockers. In Black adults without heart failure or chronic kidney disease, thiazide diuretics or calcium channel blockers are preferred initial therapy.

Target a blood pressure below 130/80 mmHg for most treated adults. Reassess within one month of initiating or changing therapy, and confirm out-of-office readings with home or ambulatory monitoring before intensifying treatment.`,
		},
		{
			Title:     "Type 2 Diabetes Glycemic Management",
			Specialty: core.SpecialtyEndocrinology,
			Metadata: map[string]string{
				core.MetaGuidelineID:  "manual-t2dm-glycemic",
				core.MetaOrganization: "Carelight Clinical Team",
				core.MetaGrade:        "consensus",
			},
			Contents: `Metformin remains first-line pharmacotherapy for most adults with type 2 diabetes unless contraindicated or not tolerated. Begin at 500 mg daily with food and titrate over several weeks to reduce gastrointestinal side effects.

In patients with established atherosclerotic cardiovascular disease, heart failure, or chronic kidney disease, add an SGLT2 inhibitor or GLP-1 receptor agonist with proven benefit independent of the hemoglobin A1c level.

Individualize A1c targets: below 7% is appropriate for most adults, while below 8% may be appropriate for patients with limited life expectancy, advanced complications, or a history of severe hypoglycemia.`,
		},
		{
			Title:     "Statin Therapy for Primary Prevention",
			Specialty: core.SpecialtyCardiology,
			Metadata: map[string]string{
				core.MetaGuidelineID:  "manual-statin-primary",
				core.MetaOrganization: "Carelight Clinical Team",
				core.MetaGrade:        "consensus",
			},
			Contents: `Adults aged 40 to 75 with one or more cardiovascular risk factors and an estimated 10-year ASCVD risk of 10% or greater should be offered a moderate-intensity statin for primary prevention.

For patients with LDL cholesterol of 190 mg/dL or higher, start high-intensity statin therapy regardless of the calculated risk score. Check a lipid panel 4 to 12 weeks after initiation to assess adherence and response.

Routine baseline creatine kinase measurement is not recommended. Measure transaminases before starting therapy and repeat only if symptoms of hepatotoxicity develop.`,
		},
		{
			Title:     "Community-Acquired Pneumonia in Adults",
			Specialty: core.SpecialtyInfectiousDisease,
			Metadata: map[string]string{
				core.MetaGuidelineID:  "manual-cap-adults",
				core.MetaOrganization: "Carelight Clinical Team",
				core.MetaGrade:        "consensus",
			},
			Contents: `For healthy outpatient adults without comorbidities or recent antibiotic exposure, treat community-acquired pneumonia with amoxicillin 1 g three times daily, or doxycycline 100 mg twice daily when penicillin is not an option.

Outpatients with comorbidities such as chronic heart, lung, liver, or renal disease should receive combination therapy with amoxicillin/clavulanate plus a macrolide, or monotherapy with a respiratory fluoroquinolone.

Use a validated severity score such as the Pneumonia Severity Index or CURB-65 to guide the decision between outpatient and inpatient management. Treat for a minimum of five days and until the patient is clinically stable.`,
		},
		{
			Title:     "Major Depressive Disorder First-Line Treatment",
			Specialty: core.SpecialtyPsychiatry,
			Metadata: map[string]string{
				core.MetaGuidelineID:  "manual-mdd-firstline",
				core.MetaOrganization: "Carelight Clinical Team",
				core.MetaGrade:        "consensus",
			},
			Contents: `Offer either an SSRI or evidence-based psychotherapy as first-line treatment for moderate major depressive disorder; combination therapy is preferred for severe episodes.

Assess response with a structured instrument such as the PHQ-9 at two to four week intervals. An inadequate response after four to six weeks at a therapeutic dose warrants dose optimization, switching agents, or augmentation.

Continue antidepressant therapy for at least six months after remission of a first episode. Patients with two or more prior episodes should be offered maintenance treatment for at least two years.`,
		},
	}
}
