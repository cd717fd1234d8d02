package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resilience"
)

func supportedLinkedIn(url string) bool {
	return strings.Contains(url, "linkedin.com/in/")
}

// memorySink captures every SaveLastProfile call.
type memorySink struct {
	saved []*model.ExtractedProfile
}

func (m *memorySink) SaveLastProfile(_ context.Context, p *model.ExtractedProfile) error {
	m.saved = append(m.saved, p)
	return nil
}

// recordingNotifier captures notification messages.
type recordingNotifier struct {
	successes []string
	failures  []string
}

func (r *recordingNotifier) Success(_ context.Context, msg string) {
	r.successes = append(r.successes, msg)
}

func (r *recordingNotifier) Failure(_ context.Context, msg string) {
	r.failures = append(r.failures, msg)
}

func testSelectors(t *testing.T) *SelectorSet {
	t.Helper()
	s, err := DefaultSelectors()
	require.NoError(t, err)
	return s
}

func fullProfileDOM() *fakeDOM {
	return &fakeDOM{
		url: "https://www.linkedin.com/in/janesmith?trk=feed#about",
		texts: map[string]string{
			"h1.text-heading-xlarge":        "Jane Smith",
			".text-body-medium.break-words": "VP of Engineering",
			".text-body-small.inline.t-black--light.break-words": "Denver, Colorado",
			"#about ~ .display-flex .inline-show-more-text":      "Engineering leader with fifteen years building data platforms.",
		},
		lists: map[string][]string{
			"#experience ~ .pvs-list__outer-container > ul > li": {
				"VP of Engineering\nAcme Corp · Full-time\nJan 2020 - Present · 4 yrs",
				"Director of Engineering\nInitech\n2016 - 2020",
			},
			"#education ~ .pvs-list__outer-container > ul > li": {
				"State University\nBS Computer Science\n2002 - 2006",
			},
			"#skills ~ .pvs-list__outer-container > ul > li .mr1 span[aria-hidden='true']": {
				"Go", "Distributed Systems", "go", "SQL",
			},
		},
	}
}

func TestExtract_FullProfile(t *testing.T) {
	dom := fullProfileDOM()
	sink := &memorySink{}
	notifier := &recordingNotifier{}
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	e := New(dom, testSelectors(t), supportedLinkedIn,
		WithSink(sink),
		WithNotifier(notifier),
		WithClock(func() time.Time { return fixed }),
	)

	p, err := e.Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith", p.Name)
	assert.Equal(t, "VP of Engineering", p.JobTitle)
	assert.Equal(t, "Denver, Colorado", p.Location)
	assert.Equal(t, "Acme Corp", p.Company, "company comes from the first experience entry")
	assert.Equal(t, "https://www.linkedin.com/in/janesmith", p.ProfileURL, "query and fragment stripped")
	assert.Equal(t, fixed, p.ExtractedAt)
	assert.Equal(t, model.ProfileSource, p.Source)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, "VP of Engineering", p.Experience[0].Title)
	assert.Equal(t, "Acme Corp", p.Experience[0].Company)
	assert.Equal(t, "Jan 2020 - Present · 4 yrs", p.Experience[0].Duration)

	require.Len(t, p.Education, 1)
	assert.Equal(t, "State University", p.Education[0].School)
	assert.Equal(t, "BS Computer Science", p.Education[0].Degree)

	assert.Equal(t, []string{"Go", "Distributed Systems", "SQL"}, p.Skills, "skills de-duplicated case-insensitively")

	require.Len(t, sink.saved, 1)
	assert.Same(t, p, sink.saved[0])
	assert.Len(t, notifier.successes, 1)
	assert.Empty(t, notifier.failures)
}

func TestExtract_UnsupportedPage(t *testing.T) {
	dom := &fakeDOM{url: "https://www.linkedin.com/feed/"}
	notifier := &recordingNotifier{}
	e := New(dom, testSelectors(t), supportedLinkedIn, WithNotifier(notifier))

	p, err := e.Extract(context.Background())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, resilience.ErrUnsupportedPage)
	assert.Len(t, notifier.failures, 1)
}

func TestExtract_NoIdentity(t *testing.T) {
	// Empty page, and a URL that canonicalizes to nothing useful still
	// counts as identity; force the no-identity path with a URL-less page.
	dom := &fakeDOM{url: ""}
	e := New(dom, testSelectors(t), func(string) bool { return true })

	p, err := e.Extract(context.Background())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, resilience.ErrNoIdentity)
}

func TestExtract_NameFallbackToSentinel(t *testing.T) {
	dom := fullProfileDOM()
	delete(dom.texts, "h1.text-heading-xlarge")

	e := New(dom, testSelectors(t), supportedLinkedIn)
	p, err := e.Extract(context.Background())
	require.NoError(t, err, "profile URL alone is enough identity")
	assert.Equal(t, model.NameUnresolved, p.Name)
}

func TestExtract_NameChainFallsToSecondSelector(t *testing.T) {
	dom := fullProfileDOM()
	delete(dom.texts, "h1.text-heading-xlarge")
	dom.texts["h1.top-card-layout__title"] = "Jane Smith"

	e := New(dom, testSelectors(t), supportedLinkedIn)
	p, err := e.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", p.Name)
}

func TestExtract_OverwritesPreviousResult(t *testing.T) {
	dom := fullProfileDOM()
	sink := &memorySink{}
	e := New(dom, testSelectors(t), supportedLinkedIn, WithSink(sink))

	first, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Education, 1)

	// The page re-renders without education or about; the second result
	// replaces the first wholesale, with no merging of stale fields.
	dom.url = "https://www.linkedin.com/in/otherperson"
	dom.lists["#education ~ .pvs-list__outer-container > ul > li"] = nil
	delete(dom.texts, "#about ~ .display-flex .inline-show-more-text")

	second, err := e.Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Education)
	assert.Empty(t, second.About)
	assert.Equal(t, "https://www.linkedin.com/in/otherperson", second.ProfileURL)

	require.Len(t, sink.saved, 2)
	assert.Same(t, second, sink.saved[1])
}

func TestExtract_ExperienceCapped(t *testing.T) {
	dom := fullProfileDOM()
	var blocks []string
	for i := 0; i < model.MaxExperienceEntries+3; i++ {
		blocks = append(blocks, "Engineer\nSome Co\n2010 - 2012")
	}
	dom.lists["#experience ~ .pvs-list__outer-container > ul > li"] = blocks

	e := New(dom, testSelectors(t), supportedLinkedIn)
	p, err := e.Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Experience, model.MaxExperienceEntries)
}

func TestResolveCompany_AtPattern(t *testing.T) {
	p := &model.ExtractedProfile{JobTitle: "VP of Engineering at Acme Corp"}
	assert.Equal(t, "Acme Corp", resolveCompany(p))
}

func TestResolveCompany_ExperienceWins(t *testing.T) {
	p := &model.ExtractedProfile{
		JobTitle:   "VP of Engineering at Other Co",
		Experience: []model.Experience{{Title: "VP", Company: "Acme Corp"}},
	}
	assert.Equal(t, "Acme Corp", resolveCompany(p))
}

func TestCanonicalProfileURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.com/in/jane?trk=feed", "https://x.com/in/jane"},
		{"https://x.com/in/jane#section", "https://x.com/in/jane"},
		{"https://x.com/in/jane/", "https://x.com/in/jane"},
		{"https://x.com/in/jane", "https://x.com/in/jane"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalProfileURL(tt.in))
	}
}
