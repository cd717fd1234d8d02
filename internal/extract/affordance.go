package extract

import (
	"context"

	"github.com/rotisserie/eris"
)

// affordanceID is the DOM id of the injected page-level trigger button.
const affordanceID = "prospector-capture-btn"

// affordanceScript creates the trigger button once. Re-running it is a
// no-op when the button already exists, so injection is idempotent.
const affordanceScript = `(() => {
	if (document.getElementById('` + affordanceID + `')) {
		return false;
	}
	const btn = document.createElement('button');
	btn.id = '` + affordanceID + `';
	btn.textContent = 'Save to CRM';
	btn.style.cssText = 'position:fixed;bottom:24px;right:24px;z-index:99999;' +
		'padding:10px 16px;border-radius:24px;border:none;cursor:pointer;' +
		'background:#0a66c2;color:#fff;font-weight:600;box-shadow:0 2px 8px rgba(0,0,0,.3);';
	btn.addEventListener('click', () => {
		window.postMessage({type: 'prospector:capture', gestureAt: Date.now()}, '*');
	});
	document.body.appendChild(btn);
	return true;
})()`

// InjectAffordance ensures exactly one capture trigger exists on the
// page. Safe to call any number of times.
func (e *Extractor) InjectAffordance(ctx context.Context) error {
	var created bool
	if err := e.dom.Run(ctx, affordanceScript, &created); err != nil {
		return eris.Wrap(err, "extract: inject affordance")
	}
	return nil
}
