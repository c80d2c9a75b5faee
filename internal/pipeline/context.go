package pipeline

import (
	"github.com/unlockegypt/heritage-researcher/internal/encyclopedia"
	"github.com/unlockegypt/heritage-researcher/internal/geocode"
	"github.com/unlockegypt/heritage-researcher/internal/model"
	"github.com/unlockegypt/heritage-researcher/internal/primary"
	"github.com/unlockegypt/heritage-researcher/internal/tips"
)

// Step names the pipeline stages in execution order.
type Step string

// Pipeline steps.
const (
	StepPrimary      Step = "primary"
	StepEncyclopedia Step = "encyclopedia"
	StepGovernorate  Step = "governorate"
	StepArabicTerms  Step = "arabic_terms"
	StepTips         Step = "tips"
	StepSynthesis    Step = "synthesis"
)

// StepStatus records how one stage finished for one site.
type StepStatus struct {
	OK       bool
	Degraded bool
	Reason   string
}

// SiteContext accumulates stage outputs for one site while the pipeline
// runs. Later stages read the fields earlier stages wrote.
type SiteContext struct {
	Entry model.ListingEntry

	Page       primary.PageData
	Finding    encyclopedia.Finding
	Resolution geocode.Resolution
	Phrases    []model.ArabicPhrase
	Tips       []model.Tip
	Practical  tips.Practical

	Steps map[Step]StepStatus
}

// NewSiteContext starts an empty context for a listing entry.
func NewSiteContext(entry model.ListingEntry) *SiteContext {
	return &SiteContext{
		Entry: entry,
		Steps: make(map[Step]StepStatus),
	}
}

// MarkOK records a clean stage completion.
func (c *SiteContext) MarkOK(step Step) {
	c.Steps[step] = StepStatus{OK: true}
}

// MarkDegraded records a stage that produced partial or no output but
// did not stop the site.
func (c *SiteContext) MarkDegraded(step Step, reason string) {
	c.Steps[step] = StepStatus{Degraded: true, Reason: reason}
}

// Degraded reports whether any stage finished degraded.
func (c *SiteContext) Degraded() bool {
	for _, st := range c.Steps {
		if st.Degraded {
			return true
		}
	}
	return false
}

// Name returns the best site name known so far: the primary page title
// when present, the listing entry name otherwise.
func (c *SiteContext) Name() string {
	if c.Page.Name != "" {
		return c.Page.Name
	}
	return c.Entry.Name
}
