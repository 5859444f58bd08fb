package rules

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/solsentry/solsentry/models"
)

func findingsFor(t *testing.T, source string) []models.Finding {
	t.Helper()
	return NewChecker(DefaultRules()).Check(source)
}

func TestTxOriginRule(t *testing.T) {
	src := `contract Wallet {
    address owner;
    function drain() public {
        require(tx.origin == owner, "not owner");
    }
}`
	findings := findingsFor(t, src)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Category != models.CategoryAccessControl || f.Severity != models.SeverityHigh {
		t.Errorf("got %s/%s, want access-control/high", f.Category, f.Severity)
	}
	if f.Location.Line != 4 || f.Location.Function != "drain" {
		t.Errorf("location = %+v, want line 4 in drain", f.Location)
	}
	if f.Source != models.SourceStatic {
		t.Errorf("source = %s, want static", f.Source)
	}
}

func TestReentrancyRuleRawCall(t *testing.T) {
	src := `contract Bank {
    mapping(address => uint256) balances;
    function withdraw(uint256 amount) external {
        require(balances[msg.sender] >= amount);
        (bool ok, ) = msg.sender.call{value: amount}("");
        require(ok);
        balances[msg.sender] -= amount;
    }
}`
	findings := findingsFor(t, src)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Category != models.CategoryReentrancy || f.Severity != models.SeverityHigh {
		t.Errorf("got %s/%s, want reentrancy/high", f.Category, f.Severity)
	}
	if f.Location.Line != 5 {
		t.Errorf("line = %d, want 5 (the call site)", f.Location.Line)
	}
}

func TestReentrancyRuleValueTransfer(t *testing.T) {
	src := `contract Refunder {
    mapping(address => uint256) balances;
    function refund(uint256 amount) public {
        payable(msg.sender).transfer(amount);
        balances[msg.sender] = 0;
    }
}`
	findings := findingsFor(t, src)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	if findings[0].Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium for transfer/send", findings[0].Severity)
	}
}

func TestReentrancyRuleHonoursCheckEffectsOrder(t *testing.T) {
	src := `contract Bank {
    mapping(address => uint256) balances;
    function withdraw(uint256 amount) external {
        balances[msg.sender] -= amount;
        (bool ok, ) = msg.sender.call{value: amount}("");
        require(ok);
    }
}`
	if findings := findingsFor(t, src); len(findings) != 0 {
		t.Errorf("state update before call must not flag: %+v", findings)
	}
}

func TestSelfdestructRule(t *testing.T) {
	src := `contract Killable {
    function kill() public {
        selfdestruct(payable(msg.sender));
    }
}`
	findings := findingsFor(t, src)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Category != models.CategoryLogic || f.Severity != models.SeverityMedium {
		t.Errorf("got %s/%s, want logic/medium", f.Category, f.Severity)
	}
}

func TestDelegatecallRule(t *testing.T) {
	src := `contract Proxy {
    address impl;
    function forward(bytes calldata data) external {
        (bool ok, ) = impl.delegatecall(data);
        require(ok);
    }
}`
	findings := findingsFor(t, src)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Category != models.CategoryAccessControl || f.Severity != models.SeverityHigh {
		t.Errorf("got %s/%s, want access-control/high", f.Category, f.Severity)
	}
}

func TestStorageLoopRule(t *testing.T) {
	src := `contract Airdrop {
    mapping(address => uint256) totals;
    function distribute(address[] memory users) public {
        for (uint256 i = 0; i < users.length; i++) {
            totals[users[i]] += 1;
        }
    }
}`
	findings := findingsFor(t, src)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Kind != models.KindGas || f.Severity != models.SeverityLow {
		t.Errorf("got %s/%s, want gas/low", f.Kind, f.Severity)
	}
	if f.Location.Line != 5 {
		t.Errorf("line = %d, want 5 (the write inside the loop)", f.Location.Line)
	}
}

func TestCheckerIgnoresComments(t *testing.T) {
	src := `contract Clean {
    // selfdestruct(payable(msg.sender));
    /* tx.origin == owner */
    function noop() public pure {}
}`
	if findings := findingsFor(t, src); len(findings) != 0 {
		t.Errorf("commented-out patterns must not flag: %+v", findings)
	}
}

func TestCheckerDeterministic(t *testing.T) {
	src := `contract Mixed {
    address owner;
    mapping(address => uint256) balances;
    function a() public {
        require(tx.origin == owner);
        selfdestruct(payable(owner));
    }
    function b(uint256 amount) public {
        (bool ok, ) = msg.sender.call{value: amount}("");
        require(ok);
        balances[msg.sender] = 0;
    }
}`
	first := findingsFor(t, src)
	for i := 0; i < 5; i++ {
		if again := findingsFor(t, src); !reflect.DeepEqual(first, again) {
			t.Fatalf("findings differ across runs:\n%+v\n%+v", first, again)
		}
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(first), first)
	}
	// Ordered by line, and deterministic within a line by rule order.
	for i := 1; i < len(first); i++ {
		if first[i].Location.Line < first[i-1].Location.Line {
			t.Errorf("findings out of line order: %+v", first)
		}
	}
}

func TestOverridesDisableAndReweight(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	overridesYAML := `SOL-SELFDESTRUCT:
  enabled: false
SOL-TX-ORIGIN:
  severity: critical
`
	if err := os.WriteFile(path, []byte(overridesYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	table := Apply(DefaultRules(), overrides)

	src := `contract Wallet {
    address owner;
    function drain() public {
        require(tx.origin == owner);
        selfdestruct(payable(owner));
    }
}`
	findings := NewChecker(table).Check(src)
	if len(findings) != 1 {
		t.Fatalf("expected selfdestruct disabled, got %+v", findings)
	}
	if findings[0].Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical after override", findings[0].Severity)
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil || overrides != nil {
		t.Errorf("missing file should be a no-op, got %v, %v", overrides, err)
	}
}
