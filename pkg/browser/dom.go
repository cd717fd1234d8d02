package browser

import (
	"context"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// DOM reads the inspected page through chromedp. It satisfies the
// extractor's Evaluator interface.
type DOM struct {
	session *Session
}

// NewDOM returns a DOM evaluator bound to the session's active tab.
func NewDOM(s *Session) *DOM {
	return &DOM{session: s}
}

// run executes chromedp actions on the session context, honoring the
// caller's cancellation.
func (d *DOM) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := d.session.withTimeout()
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Text returns the trimmed text of the first node matching the
// selector, or "" when nothing matches.
func (d *DOM) Text(ctx context.Context, selector string) (string, error) {
	var out string
	err := d.run(ctx, chromedp.Evaluate(textScript(selector), &out))
	if err != nil {
		return "", eris.Wrapf(err, "browser: text %s", selector)
	}
	return out, nil
}

// Texts returns the trimmed text of every node matching the selector.
func (d *DOM) Texts(ctx context.Context, selector string) ([]string, error) {
	var out []string
	err := d.run(ctx, chromedp.Evaluate(textsScript(selector), &out))
	if err != nil {
		return nil, eris.Wrapf(err, "browser: texts %s", selector)
	}
	return out, nil
}

// Attr returns the given attribute of the first matching node.
func (d *DOM) Attr(ctx context.Context, selector, attr string) (string, error) {
	var out string
	script := `(() => {
		const el = document.querySelector(` + jsString(selector) + `);
		return el ? (el.getAttribute(` + jsString(attr) + `) || '') : '';
	})()`
	if err := d.run(ctx, chromedp.Evaluate(script, &out)); err != nil {
		return "", eris.Wrapf(err, "browser: attr %s[%s]", selector, attr)
	}
	return out, nil
}

// URL returns the page's current location.
func (d *DOM) URL(ctx context.Context) (string, error) {
	var loc string
	if err := d.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", eris.Wrap(err, "browser: location")
	}
	return loc, nil
}

// Run executes a script on the page and decodes its result into out.
func (d *DOM) Run(ctx context.Context, script string, out any) error {
	if err := d.run(ctx, chromedp.Evaluate(script, out)); err != nil {
		return eris.Wrap(err, "browser: evaluate")
	}
	return nil
}

func textScript(selector string) string {
	return `(() => {
		const el = document.querySelector(` + jsString(selector) + `);
		return el ? el.innerText.trim() : '';
	})()`
}

func textsScript(selector string) string {
	return `Array.from(document.querySelectorAll(` + jsString(selector) + `))
		.map(el => el.innerText.trim())
		.filter(t => t.length > 0)`
}

// jsString quotes a Go string as a JS string literal.
func jsString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '\''))
}
