package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"github.com/happycoder/e2ee/pkg/aead"
	"github.com/happycoder/e2ee/pkg/backupkey"
	"github.com/happycoder/e2ee/pkg/e2ee"
	"github.com/happycoder/e2ee/pkg/keystore"
)

func main() {
	var (
		helpFlag    bool
		verboseFlag bool
		storePath   string
	)
	flags := flag.NewFlagSet("e2eectl", flag.ContinueOnError)
	flags.BoolVarP(&helpFlag, "help", "h", false, "Prints this usage information.")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Enables debug logging.")
	flags.StringVarP(&storePath, "store", "s", "keys.bin", "Path of the wrapped key store file.")
	flags.Usage = func() {
		fmt.Printf(`
e2eectl works with the client's end-to-end encryption material from the command line: master secrets, backup keys, and wrapped data encryption keys.

USAGE:  e2eectl COMMAND [ARGS]

COMMANDS:
    generate
        Create a new master secret and print its backup key and anonymous id.
        The backup key is the only way to recover the secret; store it safely.
    inspect BACKUP
        Validate a backup key and print the anonymous id and content public
        key it derives. Accepts sloppy input: case, dashes, and the usual
        0/O and 1/I mixups are tolerated.
    wrap BACKUP
        Mint a fresh data encryption key, wrap it to the backup key's content
        key, and register it in the key store (see -s). Prints the new id.
    list BACKUP
        List stored key ids, checking that each wrapped key unwraps with the
        given backup key.

FLAGS:
%s
SECURITY:
    The master secret never touches disk: only wrapped data encryption keys are stored, and those are useless without the backup key.
`, flags.FlagUsages())
	}
	if len(os.Args) == 1 {
		flags.Usage()
		return
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		flags.Usage()
		fatal("Error parsing flags: %v", err)
	}
	if helpFlag {
		flags.Usage()
		return
	}
	log := newLogger(verboseFlag)

	switch flags.Arg(0) {
	case "generate":
		generate()
	case "inspect":
		inspect(requireBackupArg(flags), log)
	case "wrap":
		wrap(requireBackupArg(flags), storePath, log)
	case "list":
		list(requireBackupArg(flags), storePath, log)
	case "":
		fatal("Missing required COMMAND argument")
	default:
		fatal("Unknown command %q", flags.Arg(0))
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func requireBackupArg(flags *flag.FlagSet) string {
	if flags.NArg() < 2 {
		fatal("Missing required BACKUP argument")
	}
	return strings.Join(flags.Args()[1:], " ")
}

func managerFromBackup(backup string, log *slog.Logger) *e2ee.Manager {
	secret, err := backupkey.Decode(backup)
	if err != nil {
		fatal("Invalid backup key: %v", err)
	}
	m, err := e2ee.New(secret, e2ee.WithLogger(log))
	if err != nil {
		fatal("Failed to initialize encryption: %v", err)
	}
	return m
}

func generate() {
	secret := make([]byte, backupkey.SecretSize)
	if _, err := rand.Read(secret); err != nil {
		fatal("Failed to generate master secret: %v", err)
	}
	backup, err := backupkey.Encode(secret)
	if err != nil {
		fatal("Failed to encode backup key: %v", err)
	}
	m, err := e2ee.New(secret)
	if err != nil {
		fatal("Failed to initialize encryption: %v", err)
	}
	fmt.Printf("backup key:  %s\nanonymous id: %s\n", backup, m.AnonID())
}

func inspect(backup string, log *slog.Logger) {
	m := managerFromBackup(backup, log)
	fmt.Printf("anonymous id:       %s\ncontent public key: %s\n",
		m.AnonID(), hex.EncodeToString(m.ContentPublicKey()))
}

func wrap(backup, storePath string, log *slog.Logger) {
	m := managerFromBackup(backup, log)

	dek, err := aead.GenerateKey()
	if err != nil {
		fatal("Failed to generate data encryption key: %v", err)
	}
	wrapped, err := m.EncryptEncryptionKey(dek)
	if err != nil {
		fatal("Failed to wrap key: %v", err)
	}

	store, err := keystore.OpenFileStore(storePath)
	if err != nil {
		fatal("Failed to open key store: %v", err)
	}
	defer func() { _ = store.Close() }()

	id, err := keystore.Register(store, wrapped)
	if err != nil {
		fatal("Failed to store wrapped key: %v", err)
	}
	log.Debug("wrapped key registered", "store", storePath, "id", id)
	fmt.Println(id)
}

func list(backup, storePath string, log *slog.Logger) {
	m := managerFromBackup(backup, log)

	store, err := keystore.OpenFileStore(storePath)
	if err != nil {
		fatal("Failed to open key store: %v", err)
	}
	defer func() { _ = store.Close() }()

	all, err := store.All()
	if err != nil {
		fatal("Failed to list keys: %v", err)
	}
	for id, wrapped := range all {
		status := "ok"
		if m.DecryptEncryptionKey(wrapped) == nil {
			status = "UNREADABLE with this backup key"
		}
		fmt.Printf("%s  %s\n", id, status)
	}
	log.Debug("listed wrapped keys", "store", storePath, "count", len(all))
}

func fatal(msg string, args ...any) {
	echo(msg, args...)
	os.Exit(1)
}

func echo(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Printf(msg, args...)
}
