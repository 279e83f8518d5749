package effects

import "testing"

func TestModifierAdapterPassesThroughMono(t *testing.T) {
	a := NewModifierAdapter(NewDelay(44100, 50, 0.3, 0, 0.5))
	buf := []float32{0.5, 0.25, 0.1}
	a.Process(buf, 1)
	if buf[0] != 0.5 || buf[1] != 0.25 || buf[2] != 0.1 {
		t.Errorf("mono buffer should pass through unmodified, got %v", buf)
	}
}

func TestModifierAdapterAppliesDelayToStereoBuffer(t *testing.T) {
	a := NewModifierAdapter(NewDelay(44100, 1, 0, 0, 0.5))
	buf := make([]float32, 2*200) // 200 stereo frames, well past the 1ms delay line
	buf[0], buf[1] = 1.0, 1.0
	a.Process(buf, 2)

	sawDelayed := false
	for i := 2; i < len(buf); i += 2 {
		if buf[i] != 0 || buf[i+1] != 0 {
			sawDelayed = true
			break
		}
	}
	if !sawDelayed {
		t.Error("expected the delayed impulse to reappear later in the buffer")
	}
}

func TestModifierAdapterSetEnabledFalseReportsDisabled(t *testing.T) {
	a := NewModifierAdapter(NewDistortion(44100, 10, 0.5, 0))
	a.SetEnabled(false)
	if a.Enabled() {
		t.Error("expected Enabled() to report false after SetEnabled(false)")
	}
}

func TestModifierAdapterResetClearsState(t *testing.T) {
	d := NewDelay(44100, 5, 0.5, 0, 0.5)
	a := NewModifierAdapter(d)
	buf := []float32{1, 1, 0, 0, 0, 0}
	a.Process(buf, 2)
	a.Reset()
	for _, v := range d.bufL {
		if v != 0 {
			t.Error("expected delay buffer to be cleared after Reset")
			break
		}
	}
}
