package inject

// ghostWriterJS activates ghost-writer mode. On focus of an editable
// control it assigns a stable id, snapshots the placeholder, shows a
// shimmer overlay, and requests a hint from the host. A pending hint is
// accepted with Tab (host fills the real value by id, focus advances) and
// cleared by typing. Overlapping hint requests are dropped page-side with
// an in-progress flag; the host additionally keeps only the latest focus.
// Deactivation restores every touched placeholder.
const ghostWriterJS = `(() => {
	if (window.__ghostfillGhostCleanup) return;

	let seq = 0;
	let inProgress = false;
	let pendingFieldId = null;
	const placeholders = new Map();
	const filled = new Set();
	const shimmers = new Map();

	const editable = (el) => {
		if (!el || el.disabled || el.readOnly) return false;
		const tag = el.tagName ? el.tagName.toLowerCase() : '';
		if (tag === 'textarea' || tag === 'select') return true;
		if (tag !== 'input') return false;
		const type = (el.type || 'text').toLowerCase();
		return !['hidden', 'submit', 'button', 'reset', 'image', 'file', 'checkbox', 'radio'].includes(type);
	};

	const ensureId = (el) => {
		if (!el.dataset.gfGhostId) {
			el.dataset.gfGhostId = '__gf_ghost_' + (++seq);
		}
		return el.dataset.gfGhostId;
	};

	const byGhostId = (id) => document.querySelector('[data-gf-ghost-id="' + id + '"]');

	const showShimmer = (el, id) => {
		const r = el.getBoundingClientRect();
		const s = document.createElement('div');
		s.style.cssText = 'position:absolute;pointer-events:none;z-index:2147483645;border-radius:3px;' +
			'background:linear-gradient(90deg,rgba(255,255,255,0),rgba(142,68,173,.25),rgba(255,255,255,0));' +
			'background-size:200% 100%;animation:__gfshimmer 1.2s infinite;' +
			'left:' + (r.left + window.scrollX) + 'px;top:' + (r.top + window.scrollY) + 'px;' +
			'width:' + r.width + 'px;height:' + r.height + 'px;';
		const track = () => {
			const rr = el.getBoundingClientRect();
			s.style.left = (rr.left + window.scrollX) + 'px';
			s.style.top = (rr.top + window.scrollY) + 'px';
		};
		window.addEventListener('scroll', track, true);
		window.addEventListener('resize', track, true);
		document.documentElement.appendChild(s);
		shimmers.set(id, { node: s, untrack: () => {
			window.removeEventListener('scroll', track, true);
			window.removeEventListener('resize', track, true);
		}});
	};

	const hideShimmer = (id) => {
		const s = shimmers.get(id);
		if (!s) return;
		s.untrack();
		s.node.remove();
		shimmers.delete(id);
	};

	if (!document.getElementById('__ghostfill-shimmer-style')) {
		const style = document.createElement('style');
		style.id = '__ghostfill-shimmer-style';
		style.textContent = '@keyframes __gfshimmer{0%{background-position:200% 0}100%{background-position:-200% 0}}';
		document.documentElement.appendChild(style);
	}

	// Host callback: deliver a hint. Applied only if the same field still
	// has focus, then cached as the placeholder.
	window.__ghostfillDeliverHint = (fieldId, hint) => {
		inProgress = false;
		hideShimmer(fieldId);
		const el = byGhostId(fieldId);
		if (!el) return;
		if (document.activeElement !== el) return;
		if (!placeholders.has(fieldId)) placeholders.set(fieldId, el.placeholder || '');
		el.placeholder = hint;
		pendingFieldId = fieldId;
	};

	const onFocus = (ev) => {
		const el = ev.target;
		if (!editable(el) || el.closest('#__ghostfill-fab')) return;
		const id = ensureId(el);
		if (filled.has(id) || inProgress) return;
		inProgress = true;
		pendingFieldId = null;
		if (!placeholders.has(id)) placeholders.set(id, el.placeholder || '');
		showShimmer(el, id);

		const formEl = el.closest('form');
		window.__ghostfillSend('hint_request', {
			fieldId: id,
			fieldType: (el.type || el.tagName).toLowerCase(),
			label: el.labels && el.labels.length ? el.labels[0].textContent.trim() : '',
			placeholder: placeholders.get(id),
			formSelector: formEl ? window.__ghostfillSelector(formEl) : '',
			pageUrl: location.href,
			pageTitle: document.title,
		});

		// Watchdog: if the host never delivers (handler error, dropped
		// evaluation), unwedge so later fields can still get hints. A
		// delivered hint removes the shimmer first, making this a no-op.
		setTimeout(() => {
			if (!shimmers.has(id)) return;
			inProgress = false;
			hideShimmer(id);
			const stale = byGhostId(id);
			if (stale && placeholders.has(id)) stale.placeholder = placeholders.get(id);
		}, 20000);
	};

	const advanceFocus = (from) => {
		const controls = Array.from(document.querySelectorAll('input, textarea, select')).filter(editable);
		const idx = controls.indexOf(from);
		if (idx >= 0 && idx + 1 < controls.length) controls[idx + 1].focus();
	};

	const onKeyDown = (ev) => {
		if (ev.key !== 'Tab') return;
		const el = ev.target;
		const id = el.dataset && el.dataset.gfGhostId;
		if (!id || id !== pendingFieldId) return;
		ev.stopImmediatePropagation();
		ev.preventDefault();
		filled.add(id);
		pendingFieldId = null;
		window.__ghostfillSend('fill_input_by_id', { fieldId: id });
		advanceFocus(el);
	};

	const onInput = (ev) => {
		const el = ev.target;
		const id = el.dataset && el.dataset.gfGhostId;
		if (!id || id !== pendingFieldId) return;
		pendingFieldId = null;
		if (placeholders.has(id)) el.placeholder = placeholders.get(id);
	};

	document.addEventListener('focusin', onFocus, true);
	document.addEventListener('keydown', onKeyDown, true);
	document.addEventListener('input', onInput, true);

	window.__ghostfillGhostCleanup = () => {
		document.removeEventListener('focusin', onFocus, true);
		document.removeEventListener('keydown', onKeyDown, true);
		document.removeEventListener('input', onInput, true);
		placeholders.forEach((ph, id) => {
			const el = byGhostId(id);
			if (el) el.placeholder = ph;
		});
		shimmers.forEach((_, id) => hideShimmer(id));
		delete window.__ghostfillDeliverHint;
		delete window.__ghostfillGhostCleanup;
	};
})();`

// ghostWriterCleanupJS deactivates ghost-writer mode if active.
const ghostWriterCleanupJS = `(() => {
	if (window.__ghostfillGhostCleanup) window.__ghostfillGhostCleanup();
})();`
