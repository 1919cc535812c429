package errors

import (
	"bytes"
	stderrors "errors"
	"os"
	"sort"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "D101",
			wantMsg: "Config file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "cli error",
			code:    "D121",
			wantMsg: "Unknown action",
			wantCat: CategoryCLI,
		},
		{
			name:    "transport error",
			code:    "D140",
			wantMsg: "Remote request failed",
			wantCat: CategoryTransport,
		},
		{
			name:    "unknown error code",
			code:    "D999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "--config")
	if err.Message != `flag "--config" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"code", New("D106"), "D106: Resource URL missing"},
		{"field", New("D106").WithField("resources[0].url"), "D106: resources[0].url: Resource URL missing"},
		{"no code", &Error{Message: "test error"}, "test error"},
		{"wrapped", New("D101").Wrap(os.ErrNotExist), "D101: Config file not found: file does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_WithOffset(t *testing.T) {
	data := []byte("{\n  \"a\": 1,\n  \"b\": ]\n}\n")
	offset := int64(bytes.IndexByte(data, ']'))

	err := New("D102").WithOffset("ducks.json", data, offset)
	if err.Location.Line != 3 || err.Location.Column != 8 {
		t.Errorf("Location = %+v, want line 3 column 8", err.Location)
	}
	if len(err.Context) != 4 {
		t.Errorf("Context = %q, want 4 lines", err.Context)
	}
}

func TestError_Builders(t *testing.T) {
	err := New("D106").
		WithField("resources[2].url").
		WithSuggestion("Add a url").
		WithExample(`{"name": "widget", "url": "http://localhost:4000/widgets"}`).
		WithDetail("Custom detail")

	if err.Field != "resources[2].url" {
		t.Errorf("Field = %q", err.Field)
	}
	if err.Suggestion != "Add a url" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if !strings.Contains(err.Example, "localhost:4000") {
		t.Errorf("Example = %q", err.Example)
	}
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestError_Wrap(t *testing.T) {
	inner := New("D141")
	outer := New("D140").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "D101") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New("D101")
	if FromError(e, "D102") != e {
		t.Error("FromError should return *Error as-is")
	}

	stdErr := stderrors.New("test error")
	result := FromError(stdErr, "D150")
	if result.Wrapped != stdErr || result.Code != "D150" {
		t.Errorf("FromError = %+v", result)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{
			name: "nil location",
			loc:  nil,
			want: "",
		},
		{
			name: "with column",
			loc:  &Location{File: "ducks.json", Line: 10, Column: 5},
			want: "ducks.json:10:5",
		},
		{
			name: "without column",
			loc:  &Location{File: "ducks.json", Line: 10, Column: 0},
			want: "ducks.json:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.loc.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	data := []byte("{\n  \"server\": {\"addr\": 4000}\n}\n")
	err := New("D103").
		WithField("server.addr").
		WithOffset("ducks.json", data, 24).
		WithSuggestion(`Use a string such as ":4000"`).
		WithExample(`"server": {"addr": ":4000"}`).
		Wrap(stderrors.New("missing port"))

	formatted := err.Format()

	for _, want := range []string{
		"D103",
		"Invalid server address",
		"at server.addr",
		"ducks.json:2",
		"Hint:",
		"Example:",
		"Cause: missing port",
		"Learn more:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	data := []byte("{\n  \"resources\": [\n    {\"name\": \"widget\"}\n  ]\n}\n")
	offset := int64(bytes.Index(data, []byte(`{"name"`)))
	err := New("D106").WithField("resources[0].url").WithOffset("ducks.json", data, offset)
	compact := err.FormatCompact()

	want := "ducks.json:3:5: D106: resources[0].url: Resource URL missing"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	data := []byte("{\n\n\n  \"s3\": 1\n}\n")
	offset := int64(bytes.IndexByte(data, '1'))
	err := New("D101").WithOffset("ducks.json", data, offset).Wrap(os.ErrNotExist)
	json := err.FormatJSON()

	for _, want := range []string{
		`"code":"D101"`,
		`"category":"config"`,
		`"message":"Config file not found"`,
		`"location":{"file":"ducks.json","line":4,"column":9}`,
		`"cause":"file does not exist"`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("FormatJSON() missing %s: %s", want, json)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name   string
		err    error
		output string
		want   string
	}{
		{"text", New("D120"), OutputText, "ERROR D120: Unknown resource"},
		{"text plain error", stderrors.New("plain"), OutputText, "Cause: plain"},
		{"compact", New("D120").WithField("resources[0]"), OutputCompact, "D120: resources[0]: Unknown resource\n"},
		{"compact plain error", stderrors.New("plain"), OutputCompact, "D100: Command failed\n"},
		{"json", New("D123"), OutputJSON, `"code":"D123"`},
		{"json plain error", stderrors.New("plain"), OutputJSON, `"cause":"plain"`},
		{"unknown output falls back to text", New("D120"), "yaml", "ERROR D120:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Fprint(&buf, tt.err, tt.output)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Fprint() = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	Fprint(&buf, nil, OutputText)
	if buf.Len() != 0 {
		t.Errorf("Fprint(nil) = %q, want nothing", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Error("GetAllCodes() should return codes")
	}

	if !sort.StringsAreSorted(codes) {
		t.Errorf("GetAllCodes() = %v, want sorted", codes)
	}
	if codes[0] != "D100" {
		t.Errorf("first code = %q, want D100", codes[0])
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("D101")
	if !ok {
		t.Error("D101 should exist")
	}
	if template.Message != "Config file not found" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("D999")
	if ok {
		t.Error("D999 should not exist")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
