package extract

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resilience"
)

// ProfileSink receives the most recent extraction result. The extractor
// overwrites on every call; results are never merged.
type ProfileSink interface {
	SaveLastProfile(ctx context.Context, p *model.ExtractedProfile) error
}

// Notifier surfaces extraction outcomes to the user. Notification
// failures are cosmetic and never propagate.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Failure(ctx context.Context, msg string)
}

// Extractor produces a best-effort ExtractedProfile from the currently
// loaded page.
type Extractor struct {
	dom       Evaluator
	supported func(url string) bool
	chains    fieldChains
	selectors *SelectorSet
	sink      ProfileSink
	notifier  Notifier
	now       func() time.Time
}

type fieldChains struct {
	name     Chain
	jobTitle Chain
	location Chain
	about    Chain
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSink sets where the last extracted profile is written.
func WithSink(s ProfileSink) Option {
	return func(e *Extractor) { e.sink = s }
}

// WithNotifier sets the user-visible notification surface.
func WithNotifier(n Notifier) Option {
	return func(e *Extractor) { e.notifier = n }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New builds an Extractor over the given DOM evaluator. supported
// decides whether a URL is a profile page at all.
func New(dom Evaluator, selectors *SelectorSet, supported func(string) bool, opts ...Option) *Extractor {
	e := &Extractor{
		dom:       dom,
		supported: supported,
		selectors: selectors,
		now:       time.Now,
	}
	e.chains = fieldChains{
		name:     Chain{Field: "name", Strategies: selectorStrategies(selectors.Name), Plausible: plausibleName},
		jobTitle: Chain{Field: "job_title", Strategies: selectorStrategies(selectors.JobTitle), Plausible: plausibleTitle},
		location: Chain{Field: "location", Strategies: selectorStrategies(selectors.Location), Plausible: plausibleLocation},
		about:    Chain{Field: "about", Strategies: selectorStrategies(selectors.About), Plausible: plausibleAbout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func selectorStrategies(selectors []string) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, selectorStrategy(sel))
	}
	return out
}

// atCompanyRe pulls a company name out of an "<title> at <company>"
// headline when the experience section gave nothing.
var atCompanyRe = regexp.MustCompile(`(?i)\s+at\s+([^|•@]+)$`)

// Extract reads the current DOM and returns a fresh profile. Missing
// optional fields are not errors; it fails only when the page is
// unsupported or no identifying field can be resolved.
func (e *Extractor) Extract(ctx context.Context) (*model.ExtractedProfile, error) {
	pageURL, err := e.dom.URL(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read page url")
	}
	if !e.supported(pageURL) {
		e.notifyFailure(ctx, "This page is not a supported profile page")
		return nil, eris.Wrapf(resilience.ErrUnsupportedPage, "extract: %s", pageURL)
	}

	p := &model.ExtractedProfile{
		ProfileURL:  canonicalProfileURL(pageURL),
		ExtractedAt: e.now().UTC(),
		Source:      model.ProfileSource,
	}

	if name, ok := e.chains.name.Resolve(ctx, e.dom); ok {
		p.Name = name
	} else {
		p.Name = model.NameUnresolved
	}
	if title, ok := e.chains.jobTitle.Resolve(ctx, e.dom); ok {
		p.JobTitle = title
	}
	if loc, ok := e.chains.location.Resolve(ctx, e.dom); ok {
		p.Location = loc
	}
	if about, ok := e.chains.about.Resolve(ctx, e.dom); ok {
		p.About = about
	}

	p.Experience = e.extractExperience(ctx)
	p.Education = e.extractEducation(ctx)
	p.Skills = e.extractSkills(ctx)
	p.Company = resolveCompany(p)

	if !p.HasIdentity() {
		e.notifyFailure(ctx, "Could not read a profile from this page")
		return nil, eris.Wrap(resilience.ErrNoIdentity, "extract")
	}

	if e.sink != nil {
		if err := e.sink.SaveLastProfile(ctx, p); err != nil {
			zap.L().Warn("extract: persist last profile failed", zap.Error(err))
		}
	}
	e.notifySuccess(ctx, "Profile extracted: "+p.DisplayName())

	zap.L().Info("extract: profile extracted",
		zap.String("name", p.Name),
		zap.String("url", p.ProfileURL),
		zap.Int("experience", len(p.Experience)),
	)
	return p, nil
}

// resolveCompany prefers the structured experience parse, then falls
// back to the "at <company>" headline pattern, in that order.
func resolveCompany(p *model.ExtractedProfile) string {
	if len(p.Experience) > 0 && p.Experience[0].Company != "" {
		return p.Experience[0].Company
	}
	if m := atCompanyRe.FindStringSubmatch(p.JobTitle); m != nil {
		company := strings.TrimSpace(m[1])
		if plausibleCompany(company) {
			return company
		}
	}
	return ""
}

func (e *Extractor) extractExperience(ctx context.Context) []model.Experience {
	blocks, err := e.dom.Texts(ctx, e.selectors.Experience)
	if err != nil {
		zap.L().Debug("extract: experience section unreadable", zap.Error(err))
		return nil
	}
	var entries []model.Experience
	for _, block := range blocks {
		entry := parseExperienceBlock(block)
		if entry.Title == "" && entry.Company == "" {
			continue
		}
		entries = append(entries, entry)
		if len(entries) >= model.MaxExperienceEntries {
			break
		}
	}
	return entries
}

func (e *Extractor) extractEducation(ctx context.Context) []model.Education {
	blocks, err := e.dom.Texts(ctx, e.selectors.Education)
	if err != nil {
		zap.L().Debug("extract: education section unreadable", zap.Error(err))
		return nil
	}
	var entries []model.Education
	for _, block := range blocks {
		entry := parseEducationBlock(block)
		if entry.School == "" {
			continue
		}
		entries = append(entries, entry)
		if len(entries) >= model.MaxEducationEntries {
			break
		}
	}
	return entries
}

func (e *Extractor) extractSkills(ctx context.Context) []string {
	raw, err := e.dom.Texts(ctx, e.selectors.Skills)
	if err != nil {
		zap.L().Debug("extract: skills section unreadable", zap.Error(err))
		return nil
	}
	var skills []string
	seen := make(map[string]bool)
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		skills = append(skills, s)
		if len(skills) >= model.MaxSkillEntries {
			break
		}
	}
	return skills
}

func (e *Extractor) notifySuccess(ctx context.Context, msg string) {
	if e.notifier != nil {
		e.notifier.Success(ctx, msg)
	}
}

func (e *Extractor) notifyFailure(ctx context.Context, msg string) {
	if e.notifier != nil {
		e.notifier.Failure(ctx, msg)
	}
}

// canonicalProfileURL strips query and fragment so the URL is stable as
// a dedupe key.
func canonicalProfileURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}
