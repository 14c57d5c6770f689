package links

import (
	"testing"
)

func TestBuildAffiliateURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		tag  string
		want string
	}{
		{
			name: "appends tag to bare canonical url",
			url:  "https://www.amazon.in/dp/B0ABCD1234",
			tag:  "mysite-21",
			want: "https://www.amazon.in/dp/B0ABCD1234?tag=mysite-21",
		},
		{
			name: "appends with ampersand when query exists",
			url:  "https://www.amazon.in/dp/B0ABCD1234?th=1",
			tag:  "mysite-21",
			want: "https://www.amazon.in/dp/B0ABCD1234?th=1&tag=mysite-21",
		},
		{
			name: "existing tag is left untouched",
			url:  "https://www.amazon.in/dp/B0ABCD1234?tag=other-21",
			tag:  "mysite-21",
			want: "https://www.amazon.in/dp/B0ABCD1234?tag=other-21",
		},
		{
			name: "empty tag returns url unchanged",
			url:  "https://www.amazon.in/dp/B0ABCD1234",
			tag:  "",
			want: "https://www.amazon.in/dp/B0ABCD1234",
		},
		{
			name: "tag value is query escaped",
			url:  "https://www.amazon.in/dp/B0ABCD1234",
			tag:  "my site",
			want: "https://www.amazon.in/dp/B0ABCD1234?tag=my+site",
		},
		{
			name: "unparseable url with existing tag is left untouched",
			url:  "https://www.amazon.in/dp/%zz?tag=other-21",
			tag:  "mysite-21",
			want: "https://www.amazon.in/dp/%zz?tag=other-21",
		},
		{
			name: "unparseable url with existing tag after another param",
			url:  "https://www.amazon.in/dp/%zz?th=1&tag=other-21",
			tag:  "mysite-21",
			want: "https://www.amazon.in/dp/%zz?th=1&tag=other-21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildAffiliateURL(tt.url, tt.tag); got != tt.want {
				t.Errorf("BuildAffiliateURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildAffiliateURLIsIdempotent(t *testing.T) {
	tag := "mysite-21"

	// Canonical URLs may be passthrough strings that url.Parse rejects;
	// idempotence has to hold for those too.
	for _, url := range []string{
		"https://www.amazon.in/dp/B0ABCD1234",
		"https://www.amazon.in/dp/%zz-item",
	} {
		once := BuildAffiliateURL(url, tag)
		twice := BuildAffiliateURL(once, tag)

		if once != twice {
			t.Errorf("applying the tag twice changed the URL: %q -> %q", once, twice)
		}
	}
}
