package profile

import (
	"errors"
	"testing"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
)

func TestDecodeProfileErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		reason string
		field  string
	}{
		{"empty body", ``, ReasonInvalidJSON, ""},
		{"truncated", `{"data":{"username":"a"`, ReasonInvalidJSON, ""},
		{"trailing garbage", `{"data":{}} tail`, ReasonInvalidJSON, ""},
		{"top level array", `[1,2]`, ReasonMissingData, ""},
		{"top level null", `null`, ReasonMissingData, ""},
		{"data is string", `{"data":"x"}`, ReasonMissingData, ""},
		{"data is null", `{"data":null}`, ReasonMissingData, ""},
		{"username missing", `{"data":{"total_fans":1,"total_videos":1}}`, "missing or malformed field: username", "username"},
		{"username number", `{"data":{"username":7,"total_fans":1,"total_videos":1}}`, "missing or malformed field: username", "username"},
		{"fans string", `{"data":{"username":"a","total_fans":"10","total_videos":1}}`, "missing or malformed field: total_fans", "total_fans"},
		{"fans fractional", `{"data":{"username":"a","total_fans":1.5,"total_videos":1}}`, "missing or malformed field: total_fans", "total_fans"},
		{"fans beyond int64", `{"data":{"username":"a","total_fans":99999999999999999999,"total_videos":1}}`, "missing or malformed field: total_fans", "total_fans"},
		{"fans beyond int32", `{"data":{"username":"a","total_fans":2147483648,"total_videos":1}}`, ReasonFanCountRange, "total_fans"},
		{"fans below int32", `{"data":{"username":"a","total_fans":-2147483649,"total_videos":1}}`, ReasonFanCountRange, "total_fans"},
		{"videos missing", `{"data":{"username":"a","total_fans":1}}`, "missing or malformed field: total_videos", "total_videos"},
		{"videos null", `{"data":{"username":"a","total_fans":1,"total_videos":null}}`, "missing or malformed field: total_videos", "total_videos"},
		{"videos beyond int32", `{"data":{"username":"a","total_fans":1,"total_videos":3000000000}}`, ReasonVideoCountRange, "total_videos"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeProfile([]byte(tc.body))
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if fe.Kind != KindDecode {
				t.Fatalf("expected decode kind, got %s", fe.Kind)
			}
			if fe.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", fe.Reason, tc.reason)
			}
			if fe.Field != tc.field {
				t.Fatalf("field = %q, want %q", fe.Field, tc.field)
			}
		})
	}
}

func TestDecodeProfileAcceptsInt32Bounds(t *testing.T) {
	body := `{"data":{"username":"","total_fans":2147483647,"total_videos":-2147483648}}`
	rec, err := decodeProfile([]byte(body))
	if err != nil {
		t.Fatalf("decodeProfile: %v", err)
	}
	want := domain.ProfileRecord{Username: "", TotalFans: 2147483647, TotalVideos: -2147483648}
	if rec != want {
		t.Fatalf("got %+v, want %+v", rec, want)
	}
}
