package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ico "github.com/thatoddmailbox/go-icoutils"
)

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func pngFile(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return buf.Bytes()
}

func opaqueImage(width, height int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(m.Pix); i += 4 {
		m.Pix[i] = 255
	}
	return m
}

// translucentImage encodes as an 8-bit RGBA PNG.
func translucentImage(width, height int) *image.NRGBA {
	m := opaqueImage(width, height)
	m.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})
	return m
}

// writeFixture writes an icon holding a 16x16 bitmap entry followed by a
// 32x32 PNG entry and returns its path and the PNG payload.
func writeFixture(t *testing.T, dir, name string) (string, []byte) {
	t.Helper()

	enc := &ico.ImageEncoder{}
	bitmap, err := enc.Encode(ico.KindIcon, pngFile(t, opaqueImage(16, 16)), ico.Hotspot{})
	require.NoError(t, err)

	rawPNG := pngFile(t, translucentImage(32, 32))
	raw, err := enc.Raw(rawPNG, ico.Hotspot{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ico.Encode(&buf, ico.KindIcon, []ico.Image{bitmap, raw}))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path, rawPNG
}

const (
	fixtureLine1 = "--icon --index=1 --width=16 --height=16 --bit-depth=24 --palette-size=0"
	fixtureLine2 = "--icon --index=2 --width=32 --height=32 --bit-depth=32 --palette-size=0"
)

func TestFormatListLine(t *testing.T) {
	icon := ico.Metadata{Index: 3, Width: 48, Height: 48, BitDepth: 8, PaletteSize: 256, Kind: ico.KindIcon}
	assert.Equal(t, "--icon --index=3 --width=48 --height=48 --bit-depth=8 --palette-size=256", formatListLine(icon))

	cursor := ico.Metadata{Index: 1, Width: 32, Height: 32, BitDepth: 32, Kind: ico.KindCursor, Hotspot: ico.Hotspot{X: 7, Y: 9}}
	assert.Equal(t,
		"--cursor --index=1 --width=32 --height=32 --bit-depth=32 --palette-size=0 --hotspot-x=7 --hotspot-y=9",
		formatListLine(cursor))
}

func TestExtractName(t *testing.T) {
	m := ico.Metadata{Index: 1, Width: 1, Height: 1, BitDepth: 32}

	tests := []struct {
		inName string
		dir    string
		want   string
	}{
		{"a/b/c.ico", "", "c_1_1x1x32.png"},
		{`a\b\c.CUR`, "", "c_1_1x1x32.png"},
		{`a\b\c.CUR`, "outdir", filepath.Join("outdir", "c_1_1x1x32.png")},
		{"favicon.Ico", "", "favicon_1_1x1x32.png"},
		{"image.png", "", "image.png_1_1x1x32.png"},
		{".ico", "", "_1_1x1x32.png"},
		{"(standard in)", "", "(standard in)_1_1x1x32.png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractName(tt.inName, tt.dir, m), tt.inName)
	}
}

func TestList(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), "app.ico")

	out, err := execute(t, nil, "list", path)
	require.NoError(t, err)
	assert.Equal(t, fixtureLine1+"\n"+fixtureLine2+"\n", out)
}

func TestListFilters(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), "app.ico")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"width", []string{"-w", "32"}, fixtureLine2 + "\n"},
		{"height shorthand", []string{"-h", "16"}, fixtureLine1 + "\n"},
		{"index", []string{"--index=1"}, fixtureLine1 + "\n"},
		{"bit depth", []string{"-b", "32"}, fixtureLine2 + "\n"},
		{"icon", []string{"--icon"}, fixtureLine1 + "\n" + fixtureLine2 + "\n"},
		{"icon hotspot", []string{"-X", "0", "-Y", "0"}, fixtureLine1 + "\n" + fixtureLine2 + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, nil, append(append([]string{"list"}, tt.args...), path)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFilterCommandsHelp(t *testing.T) {
	for _, sub := range []string{"list", "extract"} {
		t.Run(sub, func(t *testing.T) {
			out, err := execute(t, nil, sub, "--help")
			require.NoError(t, err)
			assert.Contains(t, out, "-h, --height")
			assert.Contains(t, out, "--help")
			assert.NotContains(t, out, "-h, --help")
		})
	}
}

func TestListNoMatch(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), "app.ico")

	out, err := execute(t, nil, "list", "--cursor", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no images matched")
	assert.Empty(t, out)
}

func TestListContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeFixture(t, dir, "app.ico")
	missing := filepath.Join(dir, "missing.ico")
	notIcon := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(notIcon, []byte("hello"), 0o644))

	out, err := execute(t, nil, "list", missing, notIcon, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing+": cannot open file")
	assert.Contains(t, err.Error(), notIcon+": not an icon or cursor file")
	assert.Equal(t, fixtureLine1+"\n"+fixtureLine2+"\n", out)
}

func TestListStdin(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), "app.ico")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out, err := execute(t, bytes.NewReader(data), "list", "-i", "2", "-")
	require.NoError(t, err)
	assert.Equal(t, fixtureLine2+"\n", out)
}

func TestListInvalidFlags(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), "app.ico")

	_, err := execute(t, nil, "list", "--width=-1", path)
	assert.EqualError(t, err, "invalid width value: -1")

	_, err = execute(t, nil, "list", "--icon", "--cursor", path)
	assert.Error(t, err)

	_, err = execute(t, nil, "list")
	assert.Error(t, err)
}

func TestExtractToDirectory(t *testing.T) {
	dir := t.TempDir()
	path, rawPNG := writeFixture(t, dir, "app.ico")
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	_, err := execute(t, nil, "extract", "-o", outDir, path)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "app_2_32x32x32.png"))
	require.NoError(t, err)
	assert.Equal(t, rawPNG, data)

	f, err := os.Open(filepath.Join(outDir, "app_1_16x16x24.png"))
	require.NoError(t, err)
	defer f.Close()
	m, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), m.Bounds())
	assert.Equal(t, color.NRGBA{A: 255}, color.NRGBAModel.Convert(m.At(3, 3)))
}

func TestExtractToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	path, rawPNG := writeFixture(t, dir, "app.ICO")
	t.Chdir(dir)

	_, err := execute(t, nil, "extract", "--width=32", path)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "app_2_32x32x32.png"))
	require.NoError(t, err)
	assert.Equal(t, rawPNG, data)
	assert.NoFileExists(t, filepath.Join(dir, "app_1_16x16x24.png"))
}

func TestExtractToFile(t *testing.T) {
	dir := t.TempDir()
	path, rawPNG := writeFixture(t, dir, "app.ico")
	out := filepath.Join(dir, "single.png")

	_, err := execute(t, nil, "extract", "-i", "2", "-o", out, path)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, rawPNG, data)
}

func TestExtractToStdout(t *testing.T) {
	path, rawPNG := writeFixture(t, t.TempDir(), "app.ico")

	out, err := execute(t, nil, "extract", "-i", "2", "-o", "-", path)
	require.NoError(t, err)
	assert.Equal(t, string(rawPNG), out)
}

func TestExtractNoMatch(t *testing.T) {
	path, _ := writeFixture(t, t.TempDir(), "app.ico")

	out, err := execute(t, nil, "extract", "-o", "-", "-w", "64", path)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	encoded := filepath.Join(dir, "small.png")
	raw := filepath.Join(dir, "large.png")
	rawPNG := pngFile(t, translucentImage(48, 48))
	require.NoError(t, os.WriteFile(encoded, pngFile(t, opaqueImage(16, 16)), 0o644))
	require.NoError(t, os.WriteFile(raw, rawPNG, 0o644))
	out := filepath.Join(dir, "app.ico")

	_, err := execute(t, nil, "create", "-o", out, "-r", raw, encoded)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	c, err := ico.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, ico.KindIcon, c.Kind())

	metas, err := c.Metadata()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, 16, metas[0].Width)
	assert.Equal(t, 24, metas[0].BitDepth)
	assert.False(t, metas[0].PNG)
	assert.Equal(t, 48, metas[1].Width)
	assert.True(t, metas[1].PNG)
	assert.Equal(t, rawPNG, c.Entries[1].Data)
}

func TestCreateCursorToStdout(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "pointer.png")
	require.NoError(t, os.WriteFile(raw, pngFile(t, translucentImage(1, 1)), 0o644))

	out, err := execute(t, nil, "create", "--cursor", "-X", "7", "-Y", "9", "-r", raw)
	require.NoError(t, err)

	data := []byte(out)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[2:]))
	assert.Equal(t, uint16(7), binary.LittleEndian.Uint16(data[10:]))
	assert.Equal(t, uint16(9), binary.LittleEndian.Uint16(data[12:]))
}

func TestCreateFromStdin(t *testing.T) {
	out, err := execute(t, bytes.NewReader(pngFile(t, opaqueImage(8, 8))), "create", "-o", "-", "-")
	require.NoError(t, err)

	c, err := ico.Decode(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, 8, c.Entries[0].Directory.GetWidth())
}

func TestCreatePNGBitCount(t *testing.T) {
	m := image.NewNRGBA64(image.Rect(0, 0, 2, 2))
	m.SetNRGBA64(0, 0, color.NRGBA64{R: 0xFFFF, A: 0x8000})
	raw := filepath.Join(t.TempDir(), "deep.png")
	require.NoError(t, os.WriteFile(raw, pngFile(t, m), 0o644))

	out, err := execute(t, nil, "create", "-r", raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(32), binary.LittleEndian.Uint16([]byte(out)[12:]))

	out, err = execute(t, nil, "create", "--no-compat-png-bitcount", "-r", raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(64), binary.LittleEndian.Uint16([]byte(out)[12:]))
}

func TestCreateErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(input, pngFile(t, opaqueImage(4, 4)), 0o644))
	notPNG := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(notPNG, []byte("text"), 0o644))

	_, err := execute(t, nil, "create", "-o", dir, input)
	assert.EqualError(t, err, dir+": is a directory")

	_, err = execute(t, nil, "create")
	assert.EqualError(t, err, "missing file argument")

	_, err = execute(t, nil, "create", "--hotspot-x=-1", input)
	assert.Error(t, err)

	_, err = execute(t, nil, "create", filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	_, err = execute(t, nil, "create", "-r", notPNG)
	assert.ErrorIs(t, err, ico.ErrNotAPNG)

	_, err = execute(t, nil, "create", notPNG)
	assert.ErrorIs(t, err, ico.ErrNotAPNG)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Equal(t, "icotool "+version+"\n", out)
}
