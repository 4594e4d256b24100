package inject

// coreUtilsJS installs the shared page-side utilities once per document:
// the bridge sender, the selector generator, toast notifications, and the
// test-id tagger. Idempotent, safe to evaluate repeatedly.
const coreUtilsJS = `(() => {
	if (window.__ghostfillCore) return;
	window.__ghostfillCore = true;

	window.__ghostfillSend = (command, payload) => {
		try {
			window.` + BindingName + `(JSON.stringify({ command, payload }));
		} catch (e) {
			console.warn('ghostfill: bridge unavailable', e);
		}
	};

	// CSS selector for an arbitrary element: #id when available, otherwise
	// an nth-child path walked upward until the first ancestor with an id
	// (or the document root).
	window.__ghostfillSelector = (el) => {
		if (!(el instanceof Element)) return '';
		if (el.id) return '#' + CSS.escape(el.id);
		const parts = [];
		let node = el;
		while (node && node.nodeType === Node.ELEMENT_NODE) {
			if (node.id) {
				parts.unshift('#' + CSS.escape(node.id));
				break;
			}
			let nth = 1;
			let sib = node;
			while ((sib = sib.previousElementSibling)) nth++;
			parts.unshift(node.tagName.toLowerCase() + ':nth-child(' + nth + ')');
			node = node.parentElement;
		}
		return parts.join(' > ');
	};

	// Tags every fillable element under root with a collision-free
	// data-testid so later fill passes have a stable selector.
	window.__ghostfillTagTestIDs = (rootSelector) => {
		let root = document;
		if (rootSelector) {
			root = document.querySelector(rootSelector);
			if (!root) return 0;
		}
		let tagged = 0;
		root.querySelectorAll('input, textarea, select').forEach((el) => {
			if (!el.dataset.testid) {
				el.dataset.testid = 'gf-' + Math.random().toString(36).slice(2, 10) + '-' + tagged;
			}
			tagged++;
		});
		// Mark forms fully inside the viewport so snapshot consumers can
		// prefer what the user is actually looking at.
		document.querySelectorAll('form').forEach((f) => {
			const r = f.getBoundingClientRect();
			const visible = r.width > 0 && r.height > 0 && r.top >= 0 && r.left >= 0 &&
				r.bottom <= window.innerHeight && r.right <= window.innerWidth;
			if (visible) {
				f.dataset.gfViewport = '1';
			} else {
				delete f.dataset.gfViewport;
			}
		});
		return tagged;
	};

	window.__ghostfillToast = (message, kind) => {
		const existing = document.getElementById('__ghostfill-toast');
		if (existing) existing.remove();
		const toast = document.createElement('div');
		toast.id = '__ghostfill-toast';
		toast.textContent = message;
		toast.style.cssText = 'position:fixed;bottom:24px;left:50%;transform:translateX(-50%);' +
			'padding:10px 18px;border-radius:6px;color:#fff;font:13px/1.4 sans-serif;' +
			'z-index:2147483647;box-shadow:0 2px 12px rgba(0,0,0,.35);transition:opacity .3s;' +
			'background:' + (kind === 'error' ? '#c0392b' : kind === 'success' ? '#27ae60' : '#34495e') + ';';
		document.documentElement.appendChild(toast);
		setTimeout(() => {
			toast.style.opacity = '0';
			setTimeout(() => toast.remove(), 350);
		}, 3500);
	};
})();`
