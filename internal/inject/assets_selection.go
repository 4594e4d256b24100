package inject

// elementSelectionJS activates element selection mode: a highlight box
// follows the hovered element, and a click captures its selector and outer
// HTML, reports it over the bridge, and deactivates the overlay. The
// captured element also stays on window.__ghostfillSelectedElement so a
// later Generate click can use it without another round trip.
const elementSelectionJS = `(() => {
	if (window.__ghostfillSelectionCleanup) return;

	const box = document.createElement('div');
	box.style.cssText = 'position:absolute;pointer-events:none;z-index:2147483645;' +
		'border:2px solid #8e44ad;background:rgba(142,68,173,.15);border-radius:3px;' +
		'transition:all .05s ease-out;display:none;';
	document.documentElement.appendChild(box);

	let current = null;

	const position = () => {
		if (!current) return;
		const r = current.getBoundingClientRect();
		box.style.display = 'block';
		box.style.left = (r.left + window.scrollX) + 'px';
		box.style.top = (r.top + window.scrollY) + 'px';
		box.style.width = r.width + 'px';
		box.style.height = r.height + 'px';
	};

	const onMove = (ev) => {
		const el = document.elementFromPoint(ev.clientX, ev.clientY);
		if (!el || el === box || el.closest('#__ghostfill-fab')) return;
		current = el;
		position();
	};

	const onClick = (ev) => {
		if (!current || current.closest('#__ghostfill-fab')) return;
		ev.stopImmediatePropagation();
		ev.preventDefault();
		const selected = {
			selector: window.__ghostfillSelector(current),
			outerHTML: current.outerHTML,
		};
		window.__ghostfillSelectedElement = selected;
		window.__ghostfillSend('element_selected', selected);
		cleanup();
	};

	const cleanup = () => {
		document.removeEventListener('mousemove', onMove, true);
		document.removeEventListener('click', onClick, true);
		window.removeEventListener('scroll', position, true);
		window.removeEventListener('resize', position, true);
		box.remove();
		delete window.__ghostfillSelectionCleanup;
	};

	document.addEventListener('mousemove', onMove, true);
	document.addEventListener('click', onClick, true);
	window.addEventListener('scroll', position, true);
	window.addEventListener('resize', position, true);

	window.__ghostfillSelectionCleanup = cleanup;
})();`

// elementSelectionCleanupJS tears selection mode down if active.
const elementSelectionCleanupJS = `(() => {
	if (window.__ghostfillSelectionCleanup) window.__ghostfillSelectionCleanup();
})();`
