// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/barista-cafe/cafe/lib/cafe"
	"github.com/barista-cafe/cafe/lib/codec"
	"github.com/barista-cafe/cafe/lib/process"
	"github.com/barista-cafe/cafe/lib/version"
)

func main() {
	var (
		address string
		name    string
		id      int
		order   string
	)

	root := &cobra.Command{
		Use:     "cafe-client",
		Short:   "Order drinks from a cafe-server and track their status",
		Version: version.Short(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(address, name, id, order)
		},
	}

	root.Flags().StringVar(&address, "address", "localhost:8888", "cafe-server address")
	root.Flags().StringVar(&name, "name", "", "customer display name (prompted if omitted)")
	root.Flags().IntVar(&id, "id", 0, "customer id (prompted if omitted)")
	root.Flags().StringVar(&order, "order", "", `initial order, e.g. "2 tea and 1 coffee" (prompted if omitted)`)

	if err := root.Execute(); err != nil {
		process.Fatal(err)
	}
}

func runSession(address, name string, id int, order string) error {
	reader := bufio.NewReader(os.Stdin)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if name == "" {
		name = promptLine(reader, interactive, "Welcome, what is your name? ")
	}
	if id == 0 {
		fmt.Fprint(promptWriter(interactive), "What is your customer id? ")
		fmt.Fscanln(reader, &id)
	}
	if order == "" {
		order = promptLine(reader, interactive, "What do you want? (e.g. \"2 tea and 1 coffee\") ")
	}

	items, skipped := cafe.ParseOrderLine(order)
	for _, term := range skipped {
		fmt.Fprintf(os.Stderr, "ignoring unparseable order term %q\n", term)
	}

	conn, err := net.Dial("tcp", address)
	if err != nil {
		return err
	}
	defer conn.Close()

	enc := codec.NewEncoder(conn)
	dec := codec.NewDecoder(conn)

	if err := enc.Encode(cafe.Frame{
		Kind:     cafe.KindCustomer,
		Customer: &cafe.Customer{Name: name, ID: id, Items: items},
	}); err != nil {
		return err
	}

	responses := make(chan cafe.Frame)
	go readLoop(dec, responses)

	connected := <-responses
	fmt.Println(connected.Text)

	for {
		line := promptLine(reader, interactive, "> ")
		if line == "" {
			continue
		}

		switch {
		case strings.EqualFold(line, "status"):
			if err := sendRequest(enc, responses, cafe.RequestOrderStatus); err != nil {
				return err
			}
		case strings.EqualFold(line, "collect"):
			if err := sendRequest(enc, responses, cafe.RequestCollect); err != nil {
				return err
			}
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "terminate"):
			if err := sendRequest(enc, responses, cafe.RequestTerminate); err != nil {
				return err
			}
			return nil
		case strings.HasPrefix(strings.ToLower(line), "order"):
			if err := sendNewOrder(enc, responses, line); err != nil {
				return err
			}
		default:
			fmt.Println(`unrecognized command; try "status", "collect", "order ...", or "exit"`)
		}
	}
}

func sendRequest(enc *codec.Encoder, responses <-chan cafe.Frame, token string) error {
	if err := enc.Encode(cafe.TextFrame(token)); err != nil {
		return err
	}
	response, ok := <-responses
	if !ok {
		return fmt.Errorf("cafe-client: connection closed")
	}
	fmt.Println(response.Text)
	return nil
}

func sendNewOrder(enc *codec.Encoder, responses <-chan cafe.Frame, line string) error {
	items, skipped := cafe.ParseOrderLine(line)
	for _, term := range skipped {
		fmt.Fprintf(os.Stderr, "ignoring unparseable order term %q\n", term)
	}

	if err := enc.Encode(cafe.TextFrame(cafe.RequestNewOrder)); err != nil {
		return err
	}
	ready, ok := <-responses
	if !ok {
		return fmt.Errorf("cafe-client: connection closed")
	}
	fmt.Println(ready.Text)

	if err := enc.Encode(cafe.ItemsFrame(items)); err != nil {
		return err
	}
	confirmed, ok := <-responses
	if !ok {
		return fmt.Errorf("cafe-client: connection closed")
	}
	fmt.Println(confirmed.Text)
	return nil
}

// readLoop is the client's single reader: it decodes every frame and
// either prints an asynchronous SERVER: notification immediately or
// forwards a response frame to the caller waiting on responses.
func readLoop(dec *codec.Decoder, responses chan<- cafe.Frame) {
	defer close(responses)
	for {
		var frame cafe.Frame
		if err := dec.Decode(&frame); err != nil {
			return
		}
		if strings.HasPrefix(frame.Text, cafe.NotificationPrefix) {
			fmt.Println(frame.Text)
			continue
		}
		responses <- frame
	}
}

func promptLine(reader *bufio.Reader, interactive bool, prompt string) string {
	fmt.Fprint(promptWriter(interactive), prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptWriter(interactive bool) *os.File {
	if interactive {
		return os.Stdout
	}
	return os.Stderr
}
