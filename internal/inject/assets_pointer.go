package inject

// pointerOverlayJS activates pointer detection mode. Placeholder: a JSON
// array of {formIndex, containerSelector}. Every resolvable container gets a
// pulsing numbered badge; clicking a badge asks the host to run the pipeline
// against that form. One shared cleanup closure unwinds everything.
const pointerOverlayJS = `(() => {
	if (window.__ghostfillPointerCleanup) window.__ghostfillPointerCleanup();

	const forms = %s;
	const badges = [];

	if (!document.getElementById('__ghostfill-pulse-style')) {
		const style = document.createElement('style');
		style.id = '__ghostfill-pulse-style';
		style.textContent = '@keyframes __gfpulse{0%%{box-shadow:0 0 0 0 rgba(39,174,96,.6)}' +
			'70%%{box-shadow:0 0 0 12px rgba(39,174,96,0)}100%%{box-shadow:0 0 0 0 rgba(39,174,96,0)}}';
		document.documentElement.appendChild(style);
	}

	forms.forEach((form) => {
		let container = null;
		try { container = document.querySelector(form.containerSelector); } catch (e) {}
		if (!container) return;

		const r = container.getBoundingClientRect();
		const badge = document.createElement('div');
		badge.textContent = String(form.formIndex + 1);
		badge.style.cssText = 'position:absolute;z-index:2147483645;cursor:pointer;' +
			'width:32px;height:32px;border-radius:50%%;background:#27ae60;color:#fff;' +
			'display:flex;align-items:center;justify-content:center;font:bold 14px sans-serif;' +
			'animation:__gfpulse 1.6s infinite;' +
			'left:' + (r.left + window.scrollX - 16) + 'px;top:' + (r.top + window.scrollY - 16) + 'px;';
		badge.addEventListener('click', (ev) => {
			ev.stopImmediatePropagation();
			ev.preventDefault();
			window.__ghostfillSend('detect_form', { formIndex: form.formIndex });
			window.__ghostfillPointerCleanup();
		}, true);

		document.documentElement.appendChild(badge);
		badges.push(badge);
	});

	window.__ghostfillPointerCleanup = () => {
		badges.forEach((b) => b.remove());
		delete window.__ghostfillPointerCleanup;
	};

	return badges.length;
})();`

// pointerOverlayCleanupJS deactivates pointer detection mode if active.
const pointerOverlayCleanupJS = `(() => {
	if (window.__ghostfillPointerCleanup) window.__ghostfillPointerCleanup();
})();`
