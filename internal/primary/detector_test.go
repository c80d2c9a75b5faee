package primary

import (
	"strings"
	"testing"
)

func TestNeedsRender(t *testing.T) {
	t.Parallel()

	fullPage := "<html><body><h1>Title</h1><p>Body text</p>" +
		strings.Repeat("<div>padding</div>", 200) + "</body></html>"

	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "tiny body",
			body: "<html></html>",
			want: true,
		},
		{
			name: "spa shell marker",
			body: "<html><body><h1>x</h1><p>y</p><app-root></app-root>" +
				strings.Repeat("<div>padding</div>", 200) + "</body></html>",
			want: true,
		},
		{
			name: "missing content selectors",
			body: "<html><body>" + strings.Repeat("<div>padding</div>", 200) + "</body></html>",
			want: true,
		},
		{
			name: "complete static page",
			body: fullPage,
			want: false,
		},
	}

	d := DefaultDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.NeedsRender([]byte(tt.body)); got != tt.want {
				t.Errorf("NeedsRender() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsRenderZeroConfigNeverPromotes(t *testing.T) {
	t.Parallel()

	d := NewRenderDetector(0, nil, nil)
	if d.NeedsRender([]byte("<html></html>")) {
		t.Error("detector with no thresholds should never promote")
	}
}
