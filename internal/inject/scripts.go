package inject

import (
	"fmt"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

// CoreScript installs the shared utilities (bridge sender, selector
// generator, toasts, test-id tagger). Evaluated on every document, also via
// AddScriptToEvaluateOnNewDocument so navigations keep the utilities alive.
func CoreScript() string { return coreUtilsJS }

// FloatingButtonScript mounts the FAB. Idempotent.
func FloatingButtonScript() string { return floatingButtonJS }

// FloatingButtonCleanupScript removes the FAB.
const FloatingButtonCleanupScript = `(() => {
	if (window.__ghostfillFabCleanup) window.__ghostfillFabCleanup();
})();`

// ElementSelectionScript activates element selection mode.
func ElementSelectionScript() string { return elementSelectionJS }

// ElementSelectionCleanupScript deactivates element selection mode.
func ElementSelectionCleanupScript() string { return elementSelectionCleanupJS }

// PointerOverlayScript renders the pointer detection overlay for the given
// forms. Only formIndex and containerSelector cross into the page.
func PointerOverlayScript(forms []schemas.DetectedForm) (string, error) {
	type marker struct {
		FormIndex         int    `json:"formIndex"`
		ContainerSelector string `json:"containerSelector"`
	}
	markers := make([]marker, 0, len(forms))
	for _, f := range forms {
		markers = append(markers, marker{FormIndex: f.FormIndex, ContainerSelector: f.ContainerSelector})
	}
	encoded, err := json.MarshalToString(markers)
	if err != nil {
		return "", fmt.Errorf("failed to encode form markers: %w", err)
	}
	return fmt.Sprintf(pointerOverlayJS, encoded), nil
}

// PointerOverlayCleanupScript deactivates pointer detection mode.
func PointerOverlayCleanupScript() string { return pointerOverlayCleanupJS }

// GhostWriterScript activates ghost-writer mode.
func GhostWriterScript() string { return ghostWriterJS }

// GhostWriterCleanupScript deactivates ghost-writer mode and restores every
// placeholder it touched.
func GhostWriterCleanupScript() string { return ghostWriterCleanupJS }

// DeliverHintScript hands a generated hint to the page for one field.
func DeliverHintScript(fieldID, hint string) (string, error) {
	idJSON, err := json.MarshalToString(fieldID)
	if err != nil {
		return "", err
	}
	hintJSON, err := json.MarshalToString(hint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	if (window.__ghostfillDeliverHint) window.__ghostfillDeliverHint(%s, %s);
})();`, idJSON, hintJSON), nil
}

// ToastScript shows a transient in-page notification. kind is "info",
// "success", or "error".
func ToastScript(message, kind string) (string, error) {
	msgJSON, err := json.MarshalToString(message)
	if err != nil {
		return "", err
	}
	kindJSON, err := json.MarshalToString(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	if (window.__ghostfillToast) window.__ghostfillToast(%s, %s);
})();`, msgJSON, kindJSON), nil
}

// ProgressScript forwards one fill progress event to the page UI.
func ProgressScript(index int, status schemas.FieldStatus, errMsg string) (string, error) {
	statusJSON, err := json.MarshalToString(string(status))
	if err != nil {
		return "", err
	}
	errJSON, err := json.MarshalToString(errMsg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	if (window.__ghostfillProgress) window.__ghostfillProgress(%d, %s, %s);
})();`, index, statusJSON, errJSON), nil
}

// SetBusyScript toggles the FAB busy state.
func SetBusyScript(busy bool) string {
	return fmt.Sprintf(`(() => {
	if (window.__ghostfillSetBusy) window.__ghostfillSetBusy(%t);
})();`, busy)
}

// TagTestIDsScript tags fillable elements under rootSelector (empty for the
// whole document) with data-testid values; evaluates to the element count.
func TagTestIDsScript(rootSelector string) (string, error) {
	rootJSON, err := json.MarshalToString(rootSelector)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`window.__ghostfillTagTestIDs ? window.__ghostfillTagTestIDs(%s) : 0`, rootJSON), nil
}

// SelectedElementScript evaluates to the stored element selection or null.
const SelectedElementScript = `window.__ghostfillSelectedElement || null`

// ClearSelectedElementScript drops the stored selection.
const ClearSelectedElementScript = `(() => { delete window.__ghostfillSelectedElement; })();`

// PageHTMLScript evaluates to the full document HTML.
const PageHTMLScript = `document.documentElement.outerHTML`
