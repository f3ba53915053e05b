package main

import (
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/merkle-ledger/ledger"
)

func printBanner() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("M", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("erkle ", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("L", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("edger", pterm.FgDarkGray.ToStyle()),
	).Render()
}

func blockTableData(blocks []ledger.Block) pterm.TableData {
	data := pterm.TableData{{"Index", "Timestamp", "Txs", "Merkle root", "Prev hash", "Hash"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.Itoa(b.Index),
			time.Unix(0, b.Timestamp).UTC().Format(time.RFC3339Nano),
			strconv.Itoa(len(b.Transactions)),
			b.MerkleRoot.Short(),
			b.PrevHash.Short(),
			b.Hash.Short(),
		})
	}
	return data
}

func printBlocks(blocks []ledger.Block) error {
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(blockTableData(blocks)).Render()
}

func validationText(r ledger.ValidationResult) string {
	if r.Valid {
		return pterm.LightGreen("chain is valid")
	}
	if r.Reason == ledger.ReasonEmptyChain {
		return pterm.LightRed("chain is empty")
	}
	return pterm.Sprintf("%s at block %d: %s",
		pterm.LightRed("chain is compromised"), r.Index, r.Reason)
}

func printValidation(title string, r ledger.ValidationResult) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(pterm.LightYellow("|" + title + "|")).WithTitleTopCenter().Println(validationText(r))
}
