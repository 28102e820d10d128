package widget

import (
	"context"
	"reflect"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	if got := Types(); !reflect.DeepEqual(got, []string{"hero-text", "text"}) {
		t.Fatalf("Types = %v", got)
	}
	if Lookup("missing") != nil {
		t.Fatal("Lookup of unknown type returned a widget")
	}
}

func TestText_EscapesAndSplits(t *testing.T) {
	got, err := Lookup("text").Render(context.Background(), map[string]string{"text": "a <b>\n\n\n c"})
	if err != nil {
		t.Fatal(err)
	}
	if want := `<div class="textwidget"><p>a &lt;b&gt;</p><p>c</p></div>`; string(got) != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestHeroText_ButtonNeedsBoth(t *testing.T) {
	w := Lookup("hero-text")
	got, _ := w.Render(context.Background(), map[string]string{"message": "Hi", "button_text": "Go"})
	if want := `<div class="textwidget"><p>Hi</p></div>`; string(got) != want {
		t.Fatalf("Render = %q", got)
	}
	got, _ = w.Render(context.Background(), map[string]string{"button_text": "Go", "button_url": "/x"})
	if want := `<div class="textwidget"><p><a class="button" href="/x">Go</a></p></div>`; string(got) != want {
		t.Fatalf("Render = %q", got)
	}
	if _, err := w.Render(context.Background(), nil); err != nil {
		t.Fatalf("nil settings: %v", err)
	}
}
