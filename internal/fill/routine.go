package fill

// firstOptionSentinel matches generate.SelectFirstOption. Duplicated here so
// the page routine stays self-contained; pinned equal by test.
const firstOptionSentinel = "__ghostfill_first_option__"

// fillFieldRoutine is the page-side fill implementation. Placeholders, in
// order: field JSON, value JSON, first-option sentinel JSON. It returns
// {status, error} and must never throw.
const fillFieldRoutine = `(() => {
	const field = %s;
	const value = %s;
	const firstOptionSentinel = %s;

	const fire = (el, type) => {
		try { el.dispatchEvent(new Event(type, { bubbles: true })); } catch (e) {}
	};

	const byLabel = (labelText) => {
		if (!labelText) return null;
		const wanted = labelText.trim().toLowerCase();
		for (const label of document.querySelectorAll('label')) {
			if (label.textContent.trim().toLowerCase().replace(/[*•:]+$/, '').trim() !== wanted) continue;
			const forId = label.getAttribute('for');
			if (forId) {
				const el = document.getElementById(forId);
				if (el) return el;
			}
			const nested = label.querySelector('input, textarea, select');
			if (nested) return nested;
		}
		return null;
	};

	let el = null;
	try { el = document.querySelector(field.selector); } catch (e) {}
	if (!el && field.alternativeSelector) {
		try { el = document.querySelector(field.alternativeSelector); } catch (e) {}
	}
	if (!el) el = byLabel(field.label);
	if (!el) return { status: 'error', error: 'not found' };

	try { el.scrollIntoView({ block: 'center' }); } catch (e) {}

	const tag = el.tagName.toLowerCase();
	const type = (el.type || '').toLowerCase();

	if (type === 'file') {
		return { status: 'skipped', error: '' };
	}

	if (type === 'checkbox' || type === 'radio') {
		if (value === 'true' || value === el.value) {
			el.checked = true;
			fire(el, 'input');
			fire(el, 'change');
		}
		return { status: 'done', error: '' };
	}

	if (tag === 'select') {
		const options = Array.from(el.options);
		let match = options.find((o) => o.value === value);
		if (!match) {
			match = options.find((o) => o.textContent.trim() === value.trim());
		}
		if (!match && value === firstOptionSentinel) {
			match = options.find((o) => o.value !== '') || options[0];
		}
		if (!match) {
			return { status: 'error', error: 'no matching option for value ' + JSON.stringify(value) };
		}
		el.value = match.value;
		fire(el, 'input');
		fire(el, 'change');
		return { status: 'done', error: '' };
	}

	// Text-like inputs and textareas. Go through the native setter so
	// framework-managed inputs observe the change.
	try {
		const proto = tag === 'textarea' ? window.HTMLTextAreaElement.prototype : window.HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value');
		if (setter && setter.set) {
			setter.set.call(el, value);
		} else {
			el.value = value;
		}
	} catch (e) {
		el.value = value;
	}
	fire(el, 'input');
	fire(el, 'change');
	return { status: 'done', error: '' };
})()`
