package compositor

import "testing"

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want Settings
	}{
		{"Defaults", nil, Settings{}},
		{"ProducerSidePainting", []Option{WithProducerSidePainting()},
			Settings{ProducerSidePainting: true}},
		{"CheckerboardTimeout", []Option{WithCheckerboardTimeout()},
			Settings{ForceDrawOnCheckerboardTimeout: true}},
		{"SynchronousDrawer", []Option{WithSynchronousDrawer()},
			Settings{SynchronousDrawer: true}},
		{"FrameThrottling", []Option{WithFrameThrottling()},
			Settings{ThrottleFrameProduction: true}},
		{"Combined", []Option{WithProducerSidePainting(), WithFrameThrottling()},
			Settings{ProducerSidePainting: true, ThrottleFrameProduction: true}},
		{"WithSettings", []Option{WithSettings(Settings{SynchronousDrawer: true})},
			Settings{SynchronousDrawer: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStateMachine(tt.opts...)
			if got := m.Settings(); got != tt.want {
				t.Errorf("Settings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWithMaxFailedDraws(t *testing.T) {
	o := defaultMachineOptions()
	if o.maxFailedDraws != defaultMaxFailedDraws {
		t.Errorf("default maxFailedDraws = %d, want %d", o.maxFailedDraws, defaultMaxFailedDraws)
	}

	WithMaxFailedDraws(5)(&o)
	if o.maxFailedDraws != 5 {
		t.Errorf("maxFailedDraws = %d, want 5", o.maxFailedDraws)
	}

	WithMaxFailedDraws(0)(&o)
	if o.maxFailedDraws != 1 {
		t.Errorf("maxFailedDraws = %d after clamping, want 1", o.maxFailedDraws)
	}
}
