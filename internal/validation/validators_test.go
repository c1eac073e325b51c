// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRuleName(t *testing.T) {
	assert.NoError(t, ValidateRuleName("allow_web-01"))
	assert.Error(t, ValidateRuleName(""))
	assert.Error(t, ValidateRuleName("has space"))
	assert.Error(t, ValidateRuleName("semi;colon"))
}

func TestValidateInterfaceName(t *testing.T) {
	assert.NoError(t, ValidateInterfaceName("eth0"))
	assert.NoError(t, ValidateInterfaceName("eth0.100"))
	assert.Error(t, ValidateInterfaceName(""))
	assert.Error(t, ValidateInterfaceName("eth0; rm -rf /"))
}

func TestValidateEnabledFlag(t *testing.T) {
	assert.NoError(t, ValidateEnabledFlag("y"))
	assert.NoError(t, ValidateEnabledFlag("n"))
	assert.Error(t, ValidateEnabledFlag("yes"))
}

func TestValidateAction(t *testing.T) {
	assert.NoError(t, ValidateAction("ACCEPT"))
	assert.NoError(t, ValidateAction("DROP"))
	assert.Error(t, ValidateAction("REJECT"))
}

func TestValidateProtocol(t *testing.T) {
	assert.NoError(t, ValidateProtocol(""))
	assert.NoError(t, ValidateProtocol("TCP"))
	assert.NoError(t, ValidateProtocol("IS-IS"))
	assert.Error(t, ValidateProtocol("BOGUS"))
}
