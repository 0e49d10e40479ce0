package deals

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hades", "hades"},
		{"HADES", "hades"},
		{"Hades™", "hades"},
		{"The  Witcher®  3", "the witcher 3"},
		{"  Celeste  ", "celeste"},
		{"DOOM© Eternal℠", "doom eternal"},
	}

	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	titles := []string{"Hades™", "The  Witcher® 3: Wild Hunt", "  ELDEN RING  "}
	for _, title := range titles {
		once := NormalizeTitle(title)
		if twice := NormalizeTitle(once); twice != once {
			t.Errorf("NormalizeTitle not idempotent for %q: %q then %q", title, once, twice)
		}
	}
}
