package indexer

import (
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

func TestExtractFileGoFunctionsAndMethods(t *testing.T) {
	src := []byte(`package widgets

import "fmt"

// Widget is a thing.
type Widget struct {
	Name string
}

// Greet prints the widget's name.
func (w *Widget) Greet() {
	fmt.Println(w.Name)
}

func NewWidget(name string) *Widget {
	return &Widget{Name: name}
}
`)
	f := FileInfo{AbsPath: "widgets.go", RelPath: "widgets.go", Language: LangGo}
	result, err := ExtractFile("proj", f, src)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	var widget, greet, newWidget *coretypes.SymbolRecord
	for i := range result.Symbols {
		s := &result.Symbols[i]
		switch s.Name {
		case "Widget":
			widget = s
		case "Greet":
			greet = s
		case "NewWidget":
			newWidget = s
		}
	}

	if widget == nil {
		t.Fatal("expected a Widget type symbol")
	}
	if widget.Kind != coretypes.SymbolType {
		t.Errorf("Widget.Kind = %v, want SymbolType", widget.Kind)
	}
	if widget.DocComment == "" {
		t.Error("expected Widget's doc comment to be captured")
	}

	if greet == nil {
		t.Fatal("expected a Greet method symbol")
	}
	if greet.Kind != coretypes.SymbolMethod {
		t.Errorf("Greet.Kind = %v, want SymbolMethod", greet.Kind)
	}
	if greet.ParentID != widget.StableID {
		t.Errorf("Greet.ParentID = %q, want Widget's stable id %q", greet.ParentID, widget.StableID)
	}

	if newWidget == nil {
		t.Fatal("expected a NewWidget function symbol")
	}
	if newWidget.Kind != coretypes.SymbolFunction {
		t.Errorf("NewWidget.Kind = %v, want SymbolFunction", newWidget.Kind)
	}

	if len(result.Imports) != 1 || result.Imports[0].ToModule != "fmt" {
		t.Errorf("expected a single fmt import edge, got %+v", result.Imports)
	}

	if len(result.Snippets) == 0 {
		t.Error("expected at least one snippet to be extracted")
	}
}

func TestExtractFilePythonClassAndMethod(t *testing.T) {
	src := []byte(`import os


class Greeter:
    """Greets people."""

    def greet(self, name):
        return "hello " + name
`)
	f := FileInfo{AbsPath: "greeter.py", RelPath: "greeter.py", Language: LangPython}
	result, err := ExtractFile("proj", f, src)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	var class, method *coretypes.SymbolRecord
	for i := range result.Symbols {
		s := &result.Symbols[i]
		switch s.Name {
		case "Greeter":
			class = s
		case "greet":
			method = s
		}
	}

	if class == nil {
		t.Fatal("expected a Greeter class symbol")
	}
	if class.Kind != coretypes.SymbolType {
		t.Errorf("Greeter.Kind = %v, want SymbolType", class.Kind)
	}

	if method == nil {
		t.Fatal("expected a greet function symbol nested under Greeter")
	}
	if method.QualifiedName != class.QualifiedName+".greet" {
		t.Errorf("greet.QualifiedName = %q, want nested under %q", method.QualifiedName, class.QualifiedName)
	}

	if len(result.Imports) != 1 || result.Imports[0].ToModule != "os" {
		t.Errorf("expected a single os import edge, got %+v", result.Imports)
	}
}

func TestExtractFileUnsupportedExtensionReturnsEmpty(t *testing.T) {
	f := FileInfo{AbsPath: "notes.md", RelPath: "notes.md", Language: ""}
	result, err := ExtractFile("proj", f, []byte("# notes"))
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if len(result.Symbols) != 0 || len(result.Snippets) != 0 || len(result.Imports) != 0 {
		t.Fatalf("expected an empty result for an unregistered extension, got %+v", result)
	}
}
