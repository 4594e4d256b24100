package inject

// floatingButtonJS mounts the floating action button. The FAB expands into
// Cancel and Generate actions plus an element-selection toggle. All clicks
// are handled in the capture phase with stopImmediatePropagation so page
// handlers never see them. Idempotent: re-evaluating on an already-mounted
// page is a no-op, which keeps post-navigation re-injection simple.
const floatingButtonJS = `(() => {
	if (document.getElementById('__ghostfill-fab')) return;

	const fab = document.createElement('div');
	fab.id = '__ghostfill-fab';
	fab.style.cssText = 'position:fixed;bottom:24px;right:24px;z-index:2147483646;' +
		'display:flex;flex-direction:column;align-items:flex-end;gap:8px;font:13px sans-serif;';

	const mkButton = (label, bg) => {
		const b = document.createElement('button');
		b.type = 'button';
		b.textContent = label;
		b.style.cssText = 'border:none;border-radius:20px;padding:10px 16px;cursor:pointer;' +
			'color:#fff;box-shadow:0 2px 10px rgba(0,0,0,.3);background:' + bg + ';';
		return b;
	};

	const menu = document.createElement('div');
	menu.style.cssText = 'display:none;flex-direction:column;align-items:flex-end;gap:8px;';

	const selectBtn = mkButton('Select element', '#8e44ad');
	const detectBtn = mkButton('Detect forms', '#2980b9');
	const ghostBtn = mkButton('Ghost writer', '#16a085');
	const generateBtn = mkButton('Generate', '#27ae60');
	const cancelBtn = mkButton('Cancel', '#7f8c8d');
	menu.append(selectBtn, detectBtn, ghostBtn, generateBtn, cancelBtn);

	const toggle = mkButton('✦', '#2c3e50');
	toggle.style.borderRadius = '50%';
	toggle.style.width = '48px';
	toggle.style.height = '48px';

	fab.append(menu, toggle);
	document.documentElement.appendChild(fab);

	const setBusy = (busy) => {
		generateBtn.disabled = busy;
		generateBtn.textContent = busy ? 'Working…' : 'Generate';
		generateBtn.style.opacity = busy ? '0.6' : '1';
	};
	window.__ghostfillSetBusy = setBusy;

	window.__ghostfillProgress = (index, status, error) => {
		if (status === 'error' && error) {
			window.__ghostfillToast('Field ' + (index + 1) + ': ' + error, 'error');
		}
	};

	const onFabClick = (handler) => (ev) => {
		ev.stopImmediatePropagation();
		ev.preventDefault();
		handler();
	};

	toggle.addEventListener('click', onFabClick(() => {
		menu.style.display = menu.style.display === 'none' ? 'flex' : 'none';
	}), true);
	selectBtn.addEventListener('click', onFabClick(() => {
		window.__ghostfillSend('toggle_element_selection', {});
	}), true);
	detectBtn.addEventListener('click', onFabClick(() => {
		window.__ghostfillSend('toggle_pointer_detection', {});
	}), true);
	ghostBtn.addEventListener('click', onFabClick(() => {
		window.__ghostfillSend('toggle_ghost_writer', {});
	}), true);
	generateBtn.addEventListener('click', onFabClick(() => {
		setBusy(true);
		window.__ghostfillSend('generate', {});
	}), true);
	cancelBtn.addEventListener('click', onFabClick(() => {
		setBusy(false);
		menu.style.display = 'none';
		window.__ghostfillSend('cancel', {});
	}), true);

	window.__ghostfillFabCleanup = () => {
		fab.remove();
		delete window.__ghostfillSetBusy;
		delete window.__ghostfillProgress;
		delete window.__ghostfillFabCleanup;
	};
})();`
