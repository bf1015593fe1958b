package compute

import (
	"strings"
	"sync"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebPage_RendersResolvedValues(t *testing.T) {
	page, err := WebPage(PageData{
		Title:         "Stacks Demo (staging)",
		AppName:       "orders",
		Environment:   "staging",
		Stack:         "staging",
		InstanceIndex: 2,
		InstanceCount: 3,
		InstanceType:  "t3.small",
	})
	require.NoError(t, err)

	assert.Contains(t, page, "<title>Stacks Demo (staging)</title>")
	assert.Contains(t, page, "orders")
	assert.Contains(t, page, "staging")
	assert.Contains(t, page, "2 of 3 (t3.small)")
}

func TestWebPage_InstallsWebServer(t *testing.T) {
	page, err := WebPage(PageData{Title: "x"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "#!/bin/bash"))
	assert.Contains(t, page, "yum install -y httpd")
	assert.Contains(t, page, "systemctl enable httpd")
}

func TestWebPage_NotesRenderAsBullets(t *testing.T) {
	page, err := WebPage(PageData{
		Title: "x",
		Notes: []string{"Account: 123456789012", "Region: us-east-1"},
	})
	require.NoError(t, err)
	assert.Contains(t, page, "<li>Account: 123456789012</li>")
	assert.Contains(t, page, "<li>Region: us-east-1</li>")
}

func TestWebPage_NoNotesNoExtraList(t *testing.T) {
	page, err := WebPage(PageData{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(page, "<ul>"))
}

func TestWithSecrets_AppendsConfigBlock(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		password := pulumi.ToSecret(pulumi.String("hunter2")).(pulumi.StringOutput)
		key := pulumi.ToSecret(pulumi.String("k-123")).(pulumi.StringOutput)

		combined := WithSecrets("#!/bin/bash\n", password, key)

		var wg sync.WaitGroup
		wg.Add(1)
		combined.ApplyT(func(script string) error {
			defer wg.Done()
			assert.True(t, strings.HasPrefix(script, "#!/bin/bash"))
			assert.Contains(t, script, "password=hunter2")
			assert.Contains(t, script, "key=k-123")
			assert.Contains(t, script, "chmod 600 /etc/app-config.conf")
			return nil
		})
		wg.Wait()
		return nil
	})
}
