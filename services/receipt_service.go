package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/wanjiru254/fundflow/configs"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/notifications"
	"github.com/wanjiru254/fundflow/utils"
)

// GenerateDonationReceipt renders a PDF receipt for a succeeded donation,
// uploads it and emails the donor a link. Meant to run in a goroutine after
// the webhook has been acknowledged.
func GenerateDonationReceipt(paymentID uuid.UUID) {
	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		log.Printf("🔥 Receipt generation: payment %s not found: %v", paymentID, err)
		return
	}
	if payment.Status != models.PaymentSucceeded || payment.DonorEmail == nil {
		return
	}
	if payment.ReceiptURL != nil {
		return
	}

	var campaign models.Campaign
	if err := database.DB.First(&campaign, "id = ?", payment.CampaignID).Error; err != nil {
		log.Printf("🔥 Receipt generation: campaign %s not found: %v", payment.CampaignID, err)
		return
	}

	receiptNumber := payment.ReceiptNumber
	if receiptNumber == nil {
		number, err := utils.GenerateUniqueReceiptNumber(database.DB)
		if err != nil {
			log.Printf("🔥 Failed to generate receipt number for payment %s: %v", payment.ID, err)
			return
		}
		receiptNumber = &number
	}

	htmlData, err := generateReceiptHTML(&payment, &campaign, *receiptNumber)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, payment.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	payment.ReceiptNumber = receiptNumber
	payment.ReceiptURL = &uploadURL
	if err := database.DB.Save(&payment).Error; err != nil {
		log.Printf("🔥 Failed to save receipt %s on payment %s: %v", *receiptNumber, payment.ID, err)
		return
	}
	log.Printf("✅ Generated receipt %s for payment %s.", *receiptNumber, payment.ID)

	notifications.SendEmail(payment.DisplayName(), *payment.DonorEmail, "Your Donation Receipt",
		fmt.Sprintf("<h1>Thank You!</h1><p>Your donation of %s %s to \"%s\" has been received. Your receipt is available <a href=\"%s\">here</a>.</p>",
			utils.FormatCents(payment.AmountCents), payment.Currency, campaign.Title, uploadURL))
}

func generateReceiptHTML(payment *models.Payment, campaign *models.Campaign, receiptNumber string) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		ReceiptNumber string
		DonorName     string
		CampaignTitle string
		Amount        string
		Currency      string
		Date          string
	}{
		ReceiptNumber: receiptNumber,
		DonorName:     payment.DisplayName(),
		CampaignTitle: campaign.Title,
		Amount:        utils.FormatCents(payment.AmountCents),
		Currency:      payment.Currency,
		Date:          time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, paymentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", paymentID, uuid.New().String()),
		Folder:       "fundflow_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
