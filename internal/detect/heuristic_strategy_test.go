package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupPage = `<html><body>
<form id="signup">
	<label for="email">Email Address *</label>
	<input type="email" id="email" name="email" data-testid="gf-email">
	<label>Full Name
		<input type="text" name="full_name">
	</label>
	<label for="dob">Date of Birth</label>
	<input type="date" id="dob" required>
	<textarea name="bio" placeholder="Tell us about yourself"></textarea>
	<select name="country" id="country"><option value="se">Sweden</option></select>
	<input type="hidden" name="csrf" value="tok">
	<input type="submit" value="Go">
</form>
<form data-testid="newsletter">
	<input type="email" name="newsletter_email" placeholder="Newsletter email">
</form>
</body></html>`

func TestHeuristic_DetectsFormsInDocumentOrder(t *testing.T) {
	s := NewHeuristicStrategy()
	forms, err := s.Detect(context.Background(), Request{HTML: signupPage, FormIndex: -1})
	require.NoError(t, err)
	require.Len(t, forms, 2)

	assert.Equal(t, 0, forms[0].FormIndex)
	assert.Equal(t, "#signup", forms[0].ContainerSelector)
	assert.Equal(t, `form[data-testid="newsletter"]`, forms[1].ContainerSelector)

	// Hidden and submit inputs are excluded.
	assert.Len(t, forms[0].Fields, 5)
}

func TestHeuristic_FieldDerivation(t *testing.T) {
	s := NewHeuristicStrategy()
	forms, err := s.Detect(context.Background(), Request{HTML: signupPage, FormIndex: 0})
	require.NoError(t, err)
	require.Len(t, forms, 1)
	fields := forms[0].Fields

	byLabel := map[string]int{}
	for i, f := range fields {
		byLabel[f.Label] = i
	}

	email := fields[byLabel["Email Address"]]
	assert.Equal(t, `[data-testid="gf-email"]`, email.Selector)
	assert.Equal(t, "#email", email.AlternativeSelector)
	assert.Equal(t, "email", email.Type)
	assert.True(t, email.Required, "asterisk in the label marks the field required")
	assert.Equal(t, "gf-email", email.TestID)

	name := fields[byLabel["Full Name"]]
	assert.Equal(t, `input[name="full_name"]`, name.Selector)
	assert.Equal(t, "text", name.Type)
	assert.False(t, name.Required)

	dob := fields[byLabel["Date of Birth"]]
	assert.Equal(t, "#dob", dob.Selector)
	assert.Equal(t, "date", dob.Type)
	assert.True(t, dob.Required, "required attribute wins")

	bio := fields[byLabel["Tell us about yourself"]]
	assert.Equal(t, "textarea", bio.Type)
	assert.Equal(t, `textarea[name="bio"]`, bio.Selector)

	country := fields[byLabel[""]]
	assert.Equal(t, "select", country.Type)
	assert.Equal(t, "#country", country.Selector)
	assert.Equal(t, `select[name="country"]`, country.AlternativeSelector)
}

func TestHeuristic_ViewportFormOutranksDocumentOrder(t *testing.T) {
	// Long pages often open scrolled to the form that matters; the tagging
	// script stamps data-gf-viewport on forms fully inside the viewport.
	page := `<html><body>
	<form id="search-header">
		<input type="text" name="q" placeholder="Search">
	</form>
	<form id="checkout" data-gf-viewport="1">
		<input type="email" name="email" placeholder="Email">
	</form>
	</body></html>`

	s := NewHeuristicStrategy()
	forms, err := s.Detect(context.Background(), Request{HTML: page, FormIndex: -1})
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "#checkout", forms[0].ContainerSelector)
	assert.Equal(t, "#search-header", forms[1].ContainerSelector)

	// An explicit index bypasses the visibility preference.
	forms, err = s.Detect(context.Background(), Request{HTML: page, FormIndex: 0})
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "#search-header", forms[0].ContainerSelector)
}

func TestHeuristic_FormIndexFilter(t *testing.T) {
	s := NewHeuristicStrategy()
	forms, err := s.Detect(context.Background(), Request{HTML: signupPage, FormIndex: 1})
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, 1, forms[0].FormIndex)
	assert.Equal(t, "Newsletter email", forms[0].Fields[0].Label)
}

func TestHeuristic_SubtreeMode(t *testing.T) {
	page := `<html><body>
	<div id="widget">
		<input type="text" name="city" placeholder="City">
		<input type="text" name="zip" placeholder="Zip">
	</div>
	<input type="text" name="outside">
	</body></html>`

	s := NewHeuristicStrategy()
	forms, err := s.Detect(context.Background(), Request{HTML: page, SubtreeSelector: "#widget", FormIndex: -1})
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "#widget", forms[0].ContainerSelector)
	assert.Len(t, forms[0].Fields, 2)
}

func TestHeuristic_SubtreeSelectorMissing(t *testing.T) {
	s := NewHeuristicStrategy()
	_, err := s.Detect(context.Background(), Request{HTML: "<html><body></body></html>", SubtreeSelector: "#missing"})
	require.Error(t, err)
}

func TestHeuristic_NoForms(t *testing.T) {
	s := NewHeuristicStrategy()
	forms, err := s.Detect(context.Background(), Request{HTML: "<html><body><p>static page</p></body></html>", FormIndex: -1})
	require.NoError(t, err)
	assert.Empty(t, forms)
}
