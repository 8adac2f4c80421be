package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestBuildTranslationStatic(t *testing.T) {
	doc := parse(t, `<div><p id="src" class="note" style="color: red">Hello</p></div>`)
	block := findByID(doc, "src")

	translation, interactive := BuildTranslation(block, "Hello", "你好", nil)
	if interactive {
		t.Fatal("a paragraph must not be classified interactive")
	}
	if translation == block {
		t.Fatal("static translation must be a separate node")
	}
	if block.NextSibling != translation {
		t.Error("translation must be inserted as the block's next sibling")
	}
	if got := NormalizeText(Text(translation)); got != "你好" {
		t.Errorf("translation text = %q, want %q", got, "你好")
	}
	if got := NormalizeText(Text(block)); got != "Hello" {
		t.Errorf("original text changed to %q", got)
	}
	if !HasClass(translation, TranslatedClass) {
		t.Error("translation missing the marker class")
	}
	if !HasClass(translation, "note") {
		t.Error("translation must keep the original's classes")
	}
	if Attr(translation, "id") != "" {
		t.Error("translation must not duplicate the original's id")
	}
	if got := Attr(translation, AttrOriginal); got != "Hello" {
		t.Errorf("%s = %q, want the source text", AttrOriginal, got)
	}
	if got := Attr(translation, AttrTranslated); got != "你好" {
		t.Errorf("%s = %q, want the translated text", AttrTranslated, got)
	}
	if got := StyleProp(translation, "color"); got != "red" {
		t.Errorf("inline color = %q, want %q", got, "red")
	}
}

func TestBuildTranslationStyleResolver(t *testing.T) {
	doc := parse(t, `<p id="src">Hello</p>`)
	block := findByID(doc, "src")

	resolve := func(n *html.Node, prop string) string {
		if prop == "font-size" {
			return "14px"
		}
		return ""
	}
	translation, _ := BuildTranslation(block, "Hello", "你好", resolve)
	if got := StyleProp(translation, "font-size"); got != "14px" {
		t.Errorf("font-size = %q, want resolver value", got)
	}
	if got := StyleProp(translation, "color"); got != "" {
		t.Errorf("color = %q, want unset", got)
	}
}

func TestBuildTranslationInteractive(t *testing.T) {
	doc := parse(t, `<button id="btn">Save</button>`)
	block := findByID(doc, "btn")

	translation, interactive := BuildTranslation(block, "Save", "保存", nil)
	if !interactive {
		t.Fatal("a button must be classified interactive")
	}
	if translation != block {
		t.Fatal("interactive translation must mutate the block in place")
	}
	if got := NormalizeText(Text(block)); got != "保存" {
		t.Errorf("button text = %q, want the translation", got)
	}
	if got := Attr(block, AttrOriginal); got != "Save" {
		t.Errorf("%s = %q, want the stashed original", AttrOriginal, got)
	}
	if !HasClass(block, TranslatedClass) {
		t.Error("mutated block missing the marker class")
	}
}

func TestRestoreBlockStatic(t *testing.T) {
	doc := parse(t, `<div id="parent"><p id="src">Hello</p></div>`)
	block := findByID(doc, "src")
	translation, _ := BuildTranslation(block, "Hello", "你好", nil)
	HideOriginal(block)

	ShowOriginal(block)
	RestoreBlock(block, translation)

	if translation.Parent != nil {
		t.Error("clone must be detached on restore")
	}
	parent := findByID(doc, "parent")
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	if count != 1 {
		t.Errorf("parent has %d element children after restore, want 1", count)
	}
	if HasClass(block, HideOriginalClass) || StyleProp(block, "display") != "" {
		t.Error("original still hidden after restore")
	}
}

func TestHideShowOriginalKeepsStyleAttr(t *testing.T) {
	doc := parse(t, `<p id="src" style="color:red;font-weight:bold">Hello</p>`)
	block := findByID(doc, "src")

	HideOriginal(block)
	if StyleProp(block, "display") != "none" {
		t.Fatal("hidden original must carry display: none")
	}
	if StyleProp(block, "color") != "red" {
		t.Error("existing style properties lost while hidden")
	}

	ShowOriginal(block)
	if got := Attr(block, "style"); got != "color:red;font-weight:bold" {
		t.Errorf("style = %q, want the original attribute untouched", got)
	}
	if HasAttr(block, AttrPrevStyle) {
		t.Errorf("%s left behind after show", AttrPrevStyle)
	}
}

func TestHideOriginalIdempotent(t *testing.T) {
	doc := parse(t, `<p id="src">Hello</p>`)
	block := findByID(doc, "src")

	HideOriginal(block)
	HideOriginal(block)
	ShowOriginal(block)

	if HasAttr(block, "style") {
		t.Errorf("style = %q, want attribute removed", Attr(block, "style"))
	}
	if HasClass(block, HideOriginalClass) {
		t.Error("hide class not removed")
	}
}

func TestRestoreBlockInteractive(t *testing.T) {
	doc := parse(t, `<button id="btn" class="cta">Save</button>`)
	block := findByID(doc, "btn")
	translation, _ := BuildTranslation(block, "Save", "保存", nil)

	RestoreBlock(block, translation)

	if got := NormalizeText(Text(block)); got != "Save" {
		t.Errorf("text = %q, want the original restored", got)
	}
	if HasClass(block, TranslatedClass) {
		t.Error("marker class not removed")
	}
	if !HasClass(block, "cta") {
		t.Error("pre-existing class lost on restore")
	}
	for _, attr := range []string{AttrSource, AttrTranslated, AttrOriginal} {
		if HasAttr(block, attr) {
			t.Errorf("%s still present after restore", attr)
		}
	}
}

func TestAttachDetachLoading(t *testing.T) {
	doc := parse(t, `<p id="src">Hello</p>`)
	block := findByID(doc, "src")

	spinner := AttachLoading(block, false)
	if block.NextSibling != spinner {
		t.Error("static spinner must be the block's next sibling")
	}
	if !HasClass(spinner, LoadingClass) {
		t.Error("spinner missing its class")
	}
	DetachLoading(spinner)
	if spinner.Parent != nil {
		t.Error("spinner still attached")
	}

	btnDoc := parse(t, `<button id="btn">Save</button>`)
	btn := findByID(btnDoc, "btn")
	spinner = AttachLoading(btn, true)
	if spinner.Parent != btn {
		t.Error("interactive spinner must be a child of the block")
	}
	DetachLoading(spinner)
	DetachLoading(nil) // must not panic
}

func TestHoverSwap(t *testing.T) {
	doc := parse(t, `<p id="src">Hello</p>`)
	block := findByID(doc, "src")
	translation, _ := BuildTranslation(block, "Hello", "你好", nil)
	AttachEditControl(translation, "key1")

	// Unmarked nodes never swap.
	HoverSwap(translation, true)
	if strings.Contains(Text(translation), "Hello") {
		t.Fatal("swap happened before EnableHoverSwap")
	}

	EnableHoverSwap(translation)
	HoverSwap(translation, true)
	if !strings.Contains(Text(translation), "Hello") {
		t.Error("hover did not reveal the original text")
	}
	if !HasClass(translation, HoveringClass) {
		t.Error("hovering class not set")
	}
	if EditKey(translation) != "key1" {
		t.Error("edit control lost during swap")
	}

	HoverSwap(translation, false)
	if !strings.Contains(Text(translation), "你好") {
		t.Error("leave did not restore the translation")
	}
	if HasClass(translation, HoveringClass) {
		t.Error("hovering class not cleared")
	}
	if EditKey(translation) != "key1" {
		t.Error("edit control lost on leave")
	}
}

func TestEditControl(t *testing.T) {
	doc := parse(t, `<p id="src">Hello</p>`)
	translation, _ := BuildTranslation(findByID(doc, "src"), "Hello", "你好", nil)

	if EditKey(translation) != "" {
		t.Fatal("EditKey on a node without a control must be empty")
	}
	AttachEditControl(translation, "abc123")
	if got := EditKey(translation); got != "abc123" {
		t.Errorf("EditKey = %q, want %q", got, "abc123")
	}
}

func TestStyleProps(t *testing.T) {
	doc := parse(t, `<p id="src" style="color: red; font-size: 12px">x</p>`)
	n := findByID(doc, "src")

	if got := StyleProp(n, "color"); got != "red" {
		t.Errorf("color = %q", got)
	}
	SetStyleProp(n, "color", "blue")
	SetStyleProp(n, "display", "none")
	if got := StyleProp(n, "color"); got != "blue" {
		t.Errorf("color after set = %q", got)
	}
	if got := StyleProp(n, "display"); got != "none" {
		t.Errorf("display = %q", got)
	}

	RemoveStyleProp(n, "display")
	if got := StyleProp(n, "display"); got != "" {
		t.Errorf("display after remove = %q", got)
	}
	if got := StyleProp(n, "font-size"); got != "12px" {
		t.Errorf("unrelated property lost, font-size = %q", got)
	}

	RemoveStyleProp(n, "color")
	RemoveStyleProp(n, "font-size")
	if HasAttr(n, "style") {
		t.Error("empty style attribute must be removed")
	}
}
