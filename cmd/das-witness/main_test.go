package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"das.dev/contracts/checker"
	"das.dev/contracts/molecule"
	"das.dev/contracts/witness"
)

func subAccountWitness(action witness.SubAccountAction, key, value []byte) []byte {
	sub := &molecule.SubAccount{
		Lock:    molecule.Script{Args: bytes.Repeat([]byte{0x03}, 42)},
		Account: []molecule.AccountChar{{Bytes: []byte("carol")}},
		Suffix:  []byte(".xxx.bit"),
	}
	return witness.RawSubAccountWitness{
		Version:       witness.SubAccountWitnessVersion,
		Action:        action,
		SignRole:      []byte{0},
		SignExpiredAt: make([]byte, 8),
		NewRoot:       bytes.Repeat([]byte{0x01}, 32),
		SubAccount:    sub.Encode(),
		EditKey:       key,
		EditValue:     value,
	}.Encode()
}

func writeFixture(t *testing.T, fx *checker.Fixture) string {
	t.Helper()
	raw, err := json.Marshal(fx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), fx.Name+".json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunInspect(t *testing.T) {
	path := writeFixture(t, checker.NewFixture("create-carol",
		[][]byte{subAccountWitness(witness.ActionCreate, witness.EditKeyManual, make([]byte, 8))},
		nil, nil))

	var out, errOut bytes.Buffer
	code := run([]string{"inspect", path, "--datadir", t.TempDir()}, &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "carol.xxx.bit manual=proof") {
		t.Fatalf("stdout=%q", out.String())
	}
}

func TestRunInspectRejectionExitCode(t *testing.T) {
	path := writeFixture(t, checker.NewFixture("script-under-manual",
		[][]byte{subAccountWitness(witness.ActionCreate, witness.EditKeyCustomScript, nil)},
		nil, nil))

	var out, errOut bytes.Buffer
	code := run([]string{"--format", "json", "inspect", path, "--datadir", t.TempDir()}, &out, &errOut)
	want := int(uint8(witness.ERR_WITNESS_EDIT_KEY_INVALID.ExitCode()))
	if code != want {
		t.Fatalf("code=%d, want %d", code, want)
	}
	if !strings.Contains(errOut.String(), "WitnessEditKeyInvalid") {
		t.Fatalf("stderr=%q", errOut.String())
	}
	var r checker.Report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("partial report is not json: %v", err)
	}
	if r.Name != "script-under-manual" || !r.ContainsCreation {
		t.Fatalf("report=%+v", r)
	}
}

func TestRunStoreCommands(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, checker.NewFixture("recycle-carol",
		[][]byte{subAccountWitness(witness.ActionRecycle, nil, nil)},
		nil, nil))

	var out, errOut bytes.Buffer
	if code := run([]string{"import", path, "--datadir", dir}, &out, &errOut); code != 0 {
		t.Fatalf("import code=%d stderr=%s", code, errOut.String())
	}

	out.Reset()
	if code := run([]string{"list", "--format", "json", "--datadir", dir}, &out, &errOut); code != 0 {
		t.Fatalf("list code=%d stderr=%s", code, errOut.String())
	}
	var names []string
	if err := json.Unmarshal(out.Bytes(), &names); err != nil || len(names) != 1 || names[0] != "recycle-carol" {
		t.Fatalf("names=%v err=%v", names, err)
	}

	out.Reset()
	if code := run([]string{"verify", "--from-store", "recycle-carol", "--datadir", dir}, &out, &errOut); code != 0 {
		t.Fatalf("verify code=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "signatures: ok") {
		t.Fatalf("stdout=%q", out.String())
	}

	out.Reset()
	if code := run([]string{"rules", "--from-store", "recycle-carol", "--datadir", dir}, &out, &errOut); code != 0 {
		t.Fatalf("rules code=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "price_rules: none") {
		t.Fatalf("stdout=%q", out.String())
	}

	if code := run([]string{"delete", "recycle-carol", "--datadir", dir}, &out, &errOut); code != 0 {
		t.Fatalf("delete code=%d stderr=%s", code, errOut.String())
	}
	errOut.Reset()
	if code := run([]string{"verify", "--from-store", "recycle-carol", "--datadir", dir}, &out, &errOut); code != 2 {
		t.Fatalf("verify after delete code=%d, want 2", code)
	}
	if !strings.Contains(errOut.String(), "not found") {
		t.Fatalf("stderr=%q", errOut.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	cases := [][]string{
		{"--format", "yaml", "list", "--datadir", "x"},
		{"inspect"},
		{"delete"},
		{"--config", "/nonexistent/das-witness.yaml", "list"},
	}
	for _, args := range cases {
		var out, errOut bytes.Buffer
		if code := run(args, &out, &errOut); code != 2 {
			t.Fatalf("args=%v code=%d, want 2", args, code)
		}
		if errOut.Len() == 0 {
			t.Fatalf("args=%v: expected stderr output", args)
		}
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Fatalf("nil error should exit 0")
	}
	if got := exitCode(witness.ERR_ITEM_MISSING); got != 2 {
		t.Fatalf("ItemMissing=%d", got)
	}
	if got := exitCode(witness.ERR_SUB_ACCOUNT_SIG_VERIFY); got != 213 {
		t.Fatalf("SubAccountSigVerifyError=%d, want 213", got)
	}
	if got := exitCode(errors.New("io")); got != 2 {
		t.Fatalf("plain error=%d", got)
	}
}
