package wrapper

import (
	"strings"
	"testing"
)

func baseRequest() Request {
	return Request{
		Fragment:       "Write-Output 'hi'",
		Head:           "HEADHEADHH",
		Tail:           "TAILTAILTT",
		VerboseFile:    "/tmp/abc_fps_verbose.tmp",
		DebugFile:      "/tmp/abc_fps_debug.tmp",
		Format:         "json",
		CollectVerbose: true,
		CollectDebug:   true,
	}
}

func TestBuild_NeverContainsLiteralDelimiters(t *testing.T) {
	req := baseRequest()
	src := Build(req)

	if strings.Contains(src, req.Head) {
		t.Fatalf("wrapper source contains literal head delimiter %q", req.Head)
	}
	if strings.Contains(src, req.Tail) {
		t.Fatalf("wrapper source contains literal tail delimiter %q", req.Tail)
	}
}

func TestBuild_HalvesReconstructToDelimiters(t *testing.T) {
	req := baseRequest()
	src := Build(req)

	headFirst := req.Head[:len(req.Head)/2]
	headSecond := req.Head[len(req.Head)/2:]
	if !strings.Contains(src, "'"+headFirst+"'") {
		t.Fatalf("expected head first half %q in source", headFirst)
	}
	if !strings.Contains(src, "'"+headSecond+"'") {
		t.Fatalf("expected head second half %q in source", headSecond)
	}
}

func TestBuild_FragmentEmbedded(t *testing.T) {
	req := baseRequest()
	src := Build(req)
	if !strings.Contains(src, req.Fragment) {
		t.Fatalf("expected fragment %q embedded verbatim in source", req.Fragment)
	}
}

func TestSuccessExpression_ByFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", "ConvertTo-Json -InputObject @($__fpsOv) -Compress"},
		{"string", "ConvertTo-Json -InputObject @($__fpsOv | ForEach-Object { ($_ | Out-String).TrimEnd() }) -Compress"},
		{"none", "$__fpsOv"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := successExpression(tt.format); got != tt.want {
				t.Errorf("successExpression(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormatLiteral(t *testing.T) {
	if got := formatLiteral("json"); got != "'json'" {
		t.Errorf("formatLiteral(json) = %q", got)
	}
	if got := formatLiteral("none"); got != "$null" {
		t.Errorf("formatLiteral(none) = %q, want $null", got)
	}
}

func TestBuild_CollectionDisabledUsesNullRedirect(t *testing.T) {
	req := baseRequest()
	req.CollectVerbose = false
	req.CollectDebug = false
	src := Build(req)

	if !strings.Contains(src, "4>$null") {
		t.Errorf("expected verbose stream redirected to null when collection disabled")
	}
	if !strings.Contains(src, "5>$null") {
		t.Errorf("expected debug stream redirected to null when collection disabled")
	}
	if strings.Contains(src, req.VerboseFile) {
		t.Errorf("verbose temp file path should not appear when collection disabled")
	}
}

func TestBuild_EnvelopeWrappedInResultObject(t *testing.T) {
	src := Build(baseRequest())
	if !strings.Contains(src, "@{ result = $__fpsEnvelope }") {
		t.Fatalf("expected envelope wrapped in a result object, got:\n%s", src)
	}
	if !strings.Contains(src, "[Console]::Out.Write($__fpsH1 + $__fpsH2 + $__fpsJson + $__fpsT1 + $__fpsT2)") {
		t.Fatalf("expected a single framed write expression, got:\n%s", src)
	}
}

func TestPSString_EscapesSingleQuotes(t *testing.T) {
	got := psString("it's a test")
	want := "'it''s a test'"
	if got != want {
		t.Errorf("psString = %q, want %q", got, want)
	}
}
