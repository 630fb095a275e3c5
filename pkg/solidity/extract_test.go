package solidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	reply := "Here you go:\n```solidity\ncontract A {}\n```\nand more\n```solidity\ncontract B {}\n```"
	assert.Equal(t, "\ncontract A {}\n", ExtractCode(reply))
	assert.Equal(t, "contract C {}", ExtractCode("contract C {}"))
}

func TestRemoveImports(t *testing.T) {
	src := "pragma solidity ^0.8.0;\nimport \"@openzeppelin/contracts/access/Ownable.sol\";\n  import {A} from \"./A.sol\";\ncontract C {}"
	got := RemoveImports(src)
	assert.NotContains(t, got, "import")
	assert.Contains(t, got, "contract C {}")
}

func TestSubstitute(t *testing.T) {
	src := `import "@openzeppelin/contracts/token/ERC20/ERC20.sol";`
	got := Substitute(src, map[string]string{"@openzeppelin": "./openzeppelin"})
	assert.Equal(t, `import "./openzeppelin/contracts/token/ERC20/ERC20.sol";`, got)
	assert.Equal(t, src, Substitute(src, nil))
}

func TestTrimDiagnostics(t *testing.T) {
	dump := "An error occurred during execution\n> command: `solc --combined-json abi`\n> return code: `1`\n> stderr:\nParserError: Expected ';'\n"
	assert.Equal(t, "> stderr:\nParserError: Expected ';'", TrimDiagnostics(dump))
	assert.Equal(t, "Error: boom", TrimDiagnostics("  Error: boom\n"))
}

func TestWordCountWithin(t *testing.T) {
	assert.True(t, WordCountWithin("a b c", 2, 4))
	assert.False(t, WordCountWithin("a b", 2, 4))
	assert.False(t, WordCountWithin("a b c d", 2, 4))
}
