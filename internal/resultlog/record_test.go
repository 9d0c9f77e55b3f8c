package resultlog

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantImage string
		wantClass string
		wantConf  float64
		correct   bool
		wantErr   bool
	}{
		{
			name:      "classifier line",
			line:      "Image: cat.png | Predicted Class: cat | Confidence: 0.90 | Result: yes",
			wantImage: "cat.png",
			wantClass: "cat",
			wantConf:  0.90,
			correct:   true,
		},
		{
			name:      "canonical keys",
			line:      "ImageFile: bus.png | PredictedClass: tree | Confidence: 0.31 | Result: no",
			wantImage: "bus.png",
			wantClass: "tree",
			wantConf:  0.31,
		},
		{
			name:      "reordered with extra field",
			line:      "Result: YES | Model: v2 | Confidence: 1 | Image: star.png | Predicted Class: star",
			wantImage: "star.png",
			wantClass: "star",
			wantConf:  1,
			correct:   true,
		},
		{
			name:    "three fields",
			line:    "Image: cat.png | Predicted Class: cat | Result: yes",
			wantErr: true,
		},
		{
			name:    "bad result word",
			line:    "Image: cat.png | Predicted Class: cat | Confidence: 0.9 | Result: maybe",
			wantErr: true,
		},
		{
			name:    "missing image",
			line:    "Foo: x | Predicted Class: cat | Confidence: 0.9 | Result: yes",
			wantErr: true,
		},
		{
			name:    "empty",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Fatalf("err = %v, want ErrMalformedRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if rec.ImageFile != tt.wantImage {
				t.Errorf("ImageFile = %q, want %q", rec.ImageFile, tt.wantImage)
			}
			if rec.PredictedClass != tt.wantClass {
				t.Errorf("PredictedClass = %q, want %q", rec.PredictedClass, tt.wantClass)
			}
			if !rec.HasConfidence || rec.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v (%v), want %v", rec.Confidence, rec.HasConfidence, tt.wantConf)
			}
			if rec.Correct != tt.correct {
				t.Errorf("Correct = %v, want %v", rec.Correct, tt.correct)
			}
		})
	}
}

func TestParse_UnparsableConfidence(t *testing.T) {
	rec, err := Parse("Image: key.png | Predicted Class: key | Confidence: n/a | Result: yes")
	if err != nil {
		t.Fatal(err)
	}
	if rec.HasConfidence {
		t.Error("HasConfidence = true for n/a")
	}
}

func TestRecord_Matches(t *testing.T) {
	rec := Record{ImageFile: " Cat.PNG "}
	if !rec.Matches("cat.png") {
		t.Error("expected case-insensitive match")
	}
	if rec.Matches("") {
		t.Error("empty artifact matched")
	}
	if rec.Matches("cats.png") {
		t.Error("different file matched")
	}
}

func TestFormat(t *testing.T) {
	got := Format(Record{ImageFile: "fish.png", PredictedClass: "fish", Confidence: 0.5, Correct: true})
	want := "ImageFile: fish.png | PredictedClass: fish | Confidence: 0.50 | Result: yes"
	if got != want {
		t.Errorf("Format = %q\nwant %q", got, want)
	}
}
