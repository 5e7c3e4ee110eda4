package htmlfmt_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tripextract/internal/htmlfmt"
)

func TestPrettify(t *testing.T) {
	src := `<!DOCTYPE html><html><head><script>if (a < b) {}</script></head>` +
		`<body><div class="a &amp; b"><p>Fish &amp; chips</p>  <br><img src="x.png"></div></body></html>`

	got, err := htmlfmt.Prettify(src)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := `<!DOCTYPE html>
<html>
 <head>
  <script>
   if (a < b) {}
  </script>
 </head>
 <body>
  <div class="a &amp; b">
   <p>
    Fish &amp; chips
   </p>
   <br>
   <img src="x.png">
  </div>
 </body>
</html>
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prettify mismatch (-want +got):\n%s", diff)
	}
}
