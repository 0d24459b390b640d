package pipeline

import (
	"strings"
	"testing"
)

func TestInjectStyle(t *testing.T) {
	t.Parallel()

	const css = "body { color: red; }"

	tests := []struct {
		name string
		page string
		css  string
		want string
	}{
		{
			name: "before head close",
			page: "<html><head><title>x</title></head><body></body></html>",
			css:  css,
			want: "<html><head><title>x</title><style>\n" + css + "\n</style>\n</head><body></body></html>",
		},
		{
			name: "upper case head",
			page: "<HTML><HEAD></HEAD></HTML>",
			css:  css,
			want: "<HTML><HEAD><style>\n" + css + "\n</style>\n</HEAD></HTML>",
		},
		{
			name: "after body open without head",
			page: `<body class="x"><p>a</p></body>`,
			css:  css,
			want: `<body class="x"><style>` + "\n" + css + "\n</style>\n<p>a</p></body>",
		},
		{
			name: "fragment gets prepended",
			page: "<p>a</p>",
			css:  css,
			want: "<style>\n" + css + "\n</style>\n<p>a</p>",
		},
		{
			name: "empty css",
			page: "<p>a</p>",
			css:  "",
			want: "<p>a</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectStyle(tt.page, tt.css); got != tt.want {
				t.Errorf("InjectStyle() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestInjectStyle_CannotCloseStyleElement(t *testing.T) {
	t.Parallel()

	got := InjectStyle("<head></head>", "a{}</style><script>alert(1)</script>")
	if strings.Contains(got, "</style><script>") {
		t.Errorf("css escaped its style element: %q", got)
	}
	if strings.Count(got, "</style>") != 1 {
		t.Errorf("want exactly one </style>, got %q", got)
	}
}
