package cmd

import (
	"fmt"

	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/chatlink/chatlink/lib/chat"
	"github.com/chatlink/chatlink/lib/payload"
	"github.com/pkg/errors"
)

// Describe turns err into a message for a person reading the chat
// rather than a programmer
func Describe(err error) string {
	var corrupt *base32768.CorruptInputError
	if errors.As(err, &corrupt) {
		return describeCorrupt(corrupt)
	}
	switch {
	case errors.Is(err, chat.ErrBadHeader):
		return fmt.Sprintf("a message looks like chatlink but its header is damaged: %v", err)
	case errors.Is(err, payload.ErrUnknownMethod):
		return fmt.Sprintf("the payload was packed by a newer or different program: %v", err)
	case errors.Is(err, chat.ErrTooManyParts):
		return fmt.Sprintf("the payload needs more messages than fit in one transfer - raise --message-length or compress it: %v", err)
	case errors.Is(err, payload.ErrTooLarge):
		return fmt.Sprintf("the payload unpacks to more than %d bytes and was refused", payload.MaxDecodedSize)
	}
	return err.Error()
}

func describeCorrupt(e *base32768.CorruptInputError) string {
	switch {
	case errors.Is(e, base32768.ErrInvalidSymbol):
		return fmt.Sprintf("character %d (%q, U+%04X) is not part of the encoding - the text was changed in transit", e.Position+1, e.CodePoint, e.CodePoint)
	case errors.Is(e, base32768.ErrTrailingSymbolsAfterTail):
		return fmt.Sprintf("the text carries on after its end marker at character %d - two payloads may have been run together", e.Position+1)
	case errors.Is(e, base32768.ErrUnalignedLargeOnlyStream):
		return fmt.Sprintf("the text stops after %d characters in the middle of a payload - it was probably cut short", e.Position)
	case errors.Is(e, base32768.ErrMalformedTail):
		return fmt.Sprintf("the end marker at character %d is damaged", e.Position+1)
	}
	return e.Error()
}
